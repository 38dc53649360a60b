package borrowing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIncludeBorrower(t *testing.T) {
	assert.False(t, IncludeBorrower(nil))
	assert.False(t, IncludeBorrower(&Principal{ID: 1, Username: "alice"}))
	assert.True(t, IncludeBorrower(&Principal{ID: 2, Username: "admin", IsStaff: true}))
}
