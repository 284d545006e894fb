package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sharebox/sharebox-fuse/internal/logging"
)

func TestFromStringRecognizesNames(t *testing.T) {
	assert.Equal(t, logging.LogLevelError, logging.FromString("error"))
	assert.Equal(t, logging.LogLevelWarning, logging.FromString("warning"))
	assert.Equal(t, logging.LogLevelBasic, logging.FromString("basic"))
	assert.Equal(t, logging.LogLevelDebug, logging.FromString("debug"))
}

func TestFromStringIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, logging.LogLevelDebug, logging.FromString("DEBUG"))
}

func TestFromStringAcceptsNumericLevel(t *testing.T) {
	assert.Equal(t, logging.LogLevelWarning, logging.FromString("1"))
}

func TestFromStringClampsOutOfRangeNumeric(t *testing.T) {
	assert.Equal(t, logging.LogLevelError, logging.FromString("-5"))
	assert.Equal(t, logging.LogLevelDebug, logging.FromString("99"))
}

func TestFromStringDefaultsToBasicOnGarbage(t *testing.T) {
	assert.Equal(t, logging.LogLevelBasic, logging.FromString("not-a-level"))
}

func TestSetLevelAndGetLevelRoundTrip(t *testing.T) {
	defer logging.SetLevel(logging.GetLevel())

	logging.SetLevel(logging.LogLevelDebug)
	assert.Equal(t, logging.LogLevelDebug, logging.GetLevel())
}
