package jwt

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()

	codec, err := NewCodec("test-secret")
	require.NoError(t, err)

	return codec
}

func TestNewCodec_EmptySecret(t *testing.T) {
	_, err := NewCodec("")
	assert.Error(t, err)
}

func TestCodec_MintVerify_RoundTrip(t *testing.T) {
	codec := newTestCodec(t)
	userID := uuid.New()

	before := time.Now()
	token, err := codec.Mint(userID, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := codec.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.WithinDuration(t, before.Add(time.Minute), claims.ExpiresAt, 2*time.Second)
	assert.WithinDuration(t, before, claims.IssuedAt, 2*time.Second)
}

func TestCodec_Verify_Expired(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.Mint(uuid.New(), -time.Minute)
	require.NoError(t, err)

	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrInvalidSignature)
}

func TestCodec_Verify_Malformed(t *testing.T) {
	codec := newTestCodec(t)

	for _, token := range []string{"garbage", "a.b", "a.b.c", ""} {
		_, err := codec.Verify(token)
		assert.ErrorIs(t, err, ErrTokenMalformed, "token %q", token)
	}
}

func TestCodec_Verify_ForeignSecret(t *testing.T) {
	codec := newTestCodec(t)

	other, err := NewCodec("other-secret")
	require.NoError(t, err)

	token, err := other.Mint(uuid.New(), time.Minute)
	require.NoError(t, err)

	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCodec_Verify_TamperedPayload(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.Mint(uuid.New(), time.Minute)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &body))

	// swap the subject, keep the original signature
	body["uid"] = uuid.New().String()
	forged, err := json.Marshal(body)
	require.NoError(t, err)

	parts[1] = base64.RawURLEncoding.EncodeToString(forged)

	_, err = codec.Verify(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
