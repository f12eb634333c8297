package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcTitle(t *testing.T) {
	assert.Equal(t, "axiskey", ProcTitle(""))
	assert.Equal(t, "axiskey: ACTIVE (SHIZUKU)", ProcTitle("ACTIVE (SHIZUKU)"))
}
