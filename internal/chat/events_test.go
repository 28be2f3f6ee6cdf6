package chat

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJoinPayload(t *testing.T) {
	validate := validator.New()

	var p JoinPayload
	err := decodePayload(validate, json.RawMessage(`{"username":"alice","room":"general"}`), &p)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, "general", p.Room)
}

func TestDecodeJoinPayloadRequiresRoom(t *testing.T) {
	validate := validator.New()

	var p JoinPayload
	err := decodePayload(validate, json.RawMessage(`{"username":"alice"}`), &p)
	assert.Error(t, err)
}

func TestDecodeAckPayloadRejectsNonPositiveId(t *testing.T) {
	validate := validator.New()

	var p AckPayload
	err := decodePayload(validate, json.RawMessage(`{"messageId":0}`), &p)
	assert.Error(t, err)

	err = decodePayload(validate, json.RawMessage(`{"messageId":-3}`), &p)
	assert.Error(t, err)
}

func TestDecodeEmptyDataDefaultsToEmptyObject(t *testing.T) {
	validate := validator.New()

	var p TypingPayload
	err := decodePayload(validate, nil, &p)
	require.NoError(t, err)
	assert.False(t, p.IsTyping)
}

func TestDecodeMalformedJson(t *testing.T) {
	validate := validator.New()

	var p SendMessagePayload
	err := decodePayload(validate, json.RawMessage(`{"message":`), &p)
	assert.Error(t, err)
}
