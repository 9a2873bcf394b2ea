// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseString(t *testing.T) {
	t.Setenv("HLSFORGE_TEST_STR", "value")
	assert.Equal(t, "value", ParseString("HLSFORGE_TEST_STR", "def"))

	t.Setenv("HLSFORGE_TEST_STR", "")
	assert.Equal(t, "def", ParseString("HLSFORGE_TEST_STR", "def"))
	assert.Equal(t, "def", ParseString("HLSFORGE_TEST_UNSET", "def"))
}

func TestParseInt(t *testing.T) {
	t.Setenv("HLSFORGE_TEST_INT", " 42 ")
	assert.Equal(t, 42, ParseInt("HLSFORGE_TEST_INT", 1))

	t.Setenv("HLSFORGE_TEST_INT", "forty")
	assert.Equal(t, 1, ParseInt("HLSFORGE_TEST_INT", 1))
}

func TestParseBool(t *testing.T) {
	for in, want := range map[string]bool{"true": true, "YES": true, "1": true, "false": false, "No": false, "0": false} {
		t.Setenv("HLSFORGE_TEST_BOOL", in)
		assert.Equal(t, want, ParseBool("HLSFORGE_TEST_BOOL", !want), in)
	}

	t.Setenv("HLSFORGE_TEST_BOOL", "maybe")
	assert.True(t, ParseBool("HLSFORGE_TEST_BOOL", true))
}

func TestParseDuration(t *testing.T) {
	t.Setenv("HLSFORGE_TEST_DUR", "1m30s")
	assert.Equal(t, 90*time.Second, ParseDuration("HLSFORGE_TEST_DUR", time.Second))

	t.Setenv("HLSFORGE_TEST_DUR", "90")
	assert.Equal(t, time.Second, ParseDuration("HLSFORGE_TEST_DUR", time.Second))
}

func TestParseFloat(t *testing.T) {
	t.Setenv("HLSFORGE_TEST_FLOAT", "0.25")
	assert.Equal(t, 0.25, ParseFloat("HLSFORGE_TEST_FLOAT", 1))

	t.Setenv("HLSFORGE_TEST_FLOAT", "x")
	assert.Equal(t, 1.0, ParseFloat("HLSFORGE_TEST_FLOAT", 1))
}
