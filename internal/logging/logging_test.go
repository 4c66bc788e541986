package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureJSON(t *testing.T) {
	var buf bytes.Buffer
	l := log.New()
	require.NoError(t, configure(l, &buf, "debug", "JSON"))
	assert.Equal(t, log.DebugLevel, l.GetLevel())

	l.WithFields(log.Fields{"case": "ABC0455"}).Debug("parsed")
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ABC0455", entry["case"])
	assert.Equal(t, "parsed", entry["msg"])
}

func TestConfigureDefaults(t *testing.T) {
	var buf bytes.Buffer
	l := log.New()
	require.NoError(t, configure(l, &buf, "", ""))
	assert.Equal(t, log.InfoLevel, l.GetLevel())
	l.Debug("hidden")
	assert.Empty(t, buf.String())
	l.Info("shown")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestConfigureRejectsUnknown(t *testing.T) {
	l := log.New()
	assert.Error(t, configure(l, &bytes.Buffer{}, "loud", ""))
	assert.Error(t, configure(l, &bytes.Buffer{}, "info", "xml"))
}
