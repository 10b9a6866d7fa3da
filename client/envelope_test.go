package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelopeExplicit(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"success":true,"message":"ok","data":{"id":"r1"}}`))
	require.NoError(t, err)
	assert.True(t, env.Success)
	assert.Equal(t, "ok", env.Message)
	assert.JSONEq(t, `{"id":"r1"}`, string(env.Data))
}

func TestDecodeEnvelopeFailurePassesThrough(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"success":false,"message":"boom","errors":["nope"]}`))
	require.NoError(t, err)
	assert.False(t, env.Success)
	assert.Equal(t, "boom", env.Message)
	assert.Equal(t, []string{"nope"}, env.Errors)
}

func TestDecodeEnvelopeWrapsBareArray(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`[{"id":"a"},{"id":"b"}]`))
	require.NoError(t, err)
	assert.True(t, env.Success)
	assert.JSONEq(t, `[{"id":"a"},{"id":"b"}]`, string(env.Data))
}

func TestDecodeEnvelopeWrapsBareObject(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"id":"r9","ranking_name":"Merit 2026"}`))
	require.NoError(t, err)
	assert.True(t, env.Success)

	var created RankingSummary
	require.NoError(t, env.Decode(&created))
	assert.Equal(t, "r9", created.ID)
	assert.Equal(t, "Merit 2026", created.RankingName)
}

func TestDecodeEnvelopeWrapsPaginated(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"items":[{"id":"a1"}],"total":1,"page":1,"size":50,"pages":1}`))
	require.NoError(t, err)
	assert.True(t, env.Success)

	var page ApplicationPage
	require.NoError(t, env.Decode(&page))
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "a1", page.Items[0].ID)
}

func TestDecodeEnvelopePaginatedBeatsBareObject(t *testing.T) {
	// A page that also carries an id field must still decode as a page.
	env, err := DecodeEnvelope([]byte(`{"id":"x","items":[],"total":0,"page":1,"size":50,"pages":0}`))
	require.NoError(t, err)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"id":"x","items":[],"total":0,"page":1,"size":50,"pages":0}`, string(env.Data))
}

func TestDecodeEnvelopeEmptyBody(t *testing.T) {
	env, err := DecodeEnvelope(nil)
	require.NoError(t, err)
	assert.True(t, env.Success)
	assert.Nil(t, env.Data)
}

func TestDecodeEnvelopeUnrecognizedShape(t *testing.T) {
	_, err := DecodeEnvelope([]byte(`{"foo":"bar"}`))
	assert.Error(t, err)
}
