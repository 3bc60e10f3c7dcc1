package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	assert.Equal(t, "boxnet "+Version+" (commit unknown, built unknown)", String("boxnet"))
}
