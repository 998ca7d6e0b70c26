package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"seahorse/internal/util/logging"
)

func TestNewTo_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.NewTo(&buf, "info", "json")
	require.NoError(t, err)

	log.WithField("peer", "bob").Info("hello")
	log.Debug("dropped")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "hello", entry["msg"])
	require.Equal(t, "bob", entry["peer"])
}

func TestNewTo_DefaultsAndErrors(t *testing.T) {
	log, err := logging.NewTo(&bytes.Buffer{}, "", "")
	require.NoError(t, err)
	require.Equal(t, logrus.WarnLevel, log.GetLevel())

	_, err = logging.NewTo(&bytes.Buffer{}, "loud", "text")
	require.Error(t, err)

	_, err = logging.NewTo(&bytes.Buffer{}, "info", "xml")
	require.Error(t, err)
}
