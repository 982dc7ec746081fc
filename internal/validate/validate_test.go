package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryRejectsEmpty(t *testing.T) {
	err := Query("   ", Config{MaxQueryLength: 100})
	assert.Error(t, err)
}

func TestQueryRejectsOverLength(t *testing.T) {
	err := Query(strings.Repeat("a", 200), Config{MaxQueryLength: 100})
	assert.Error(t, err)
}

func TestQueryAcceptsNormal(t *testing.T) {
	err := Query("SELECT 1", Config{MaxQueryLength: 100})
	assert.NoError(t, err)
}

func TestDetectCommand(t *testing.T) {
	assert.Equal(t, CommandSelect, DetectCommand("select * from t"))
	assert.Equal(t, CommandInsert, DetectCommand("INSERT INTO t VALUES (1)"))
	assert.Equal(t, CommandDDL, DetectCommand("DROP TABLE t"))
	assert.Equal(t, CommandOther, DetectCommand("EXPLAIN SELECT 1"))
}
