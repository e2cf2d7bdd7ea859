package remote

import (
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const marker = "Kortti on estetty"

func successFlag(p Payload) bool { return p.Bool("success") }

func jsonResponse(status int, body string) *Response {
	return &Response{StatusCode: status, Status: http.StatusText(status), Body: []byte(body)}
}

func TestClassify(t *testing.T) {
	c := NewClassifier(marker)

	tests := []struct {
		name        string
		resp        *Response
		err         error
		wantKind    error
		wantMessage string
	}{
		{
			name:        "transport failure",
			err:         errors.New("dial tcp 127.0.0.1:3000: connect: connection refused"),
			wantKind:    ErrTransport,
			wantMessage: "dial tcp 127.0.0.1:3000: connect: connection refused",
		},
		{
			name:     "not json on success status",
			resp:     jsonResponse(200, "<html>ok</html>"),
			wantKind: ErrMalformedResponse,
		},
		{
			name:        "not json on error status",
			resp:        &Response{StatusCode: 502, Status: "502 Bad Gateway", Body: []byte("upstream down")},
			wantKind:    ErrTransport,
			wantMessage: "HTTP 502 Bad Gateway",
		},
		{
			name:        "blocked marker wins over rejection",
			resp:        jsonResponse(403, `{"error":"Kortti on estetty"}`),
			wantKind:    ErrCardBlocked,
			wantMessage: marker,
		},
		{
			name:        "blocked marker as substring",
			resp:        jsonResponse(403, `{"error":"Vaara PIN-koodi. Kortti on estetty 3 vaaran yrityksen jalkeen."}`),
			wantKind:    ErrCardBlocked,
			wantMessage: "Vaara PIN-koodi. Kortti on estetty 3 vaaran yrityksen jalkeen.",
		},
		{
			name:        "blocked marker even on 2xx",
			resp:        jsonResponse(200, `{"success":true,"error":"Kortti on estetty"}`),
			wantKind:    ErrCardBlocked,
			wantMessage: marker,
		},
		{
			name:        "blocked marker in message beside a generic error",
			resp:        jsonResponse(403, `{"error":"Forbidden","message":"Kortti on estetty"}`),
			wantKind:    ErrCardBlocked,
			wantMessage: marker,
		},
		{
			name:        "rejected with server message",
			resp:        jsonResponse(403, `{"error":"Väärä PIN-koodi"}`),
			wantKind:    ErrRejected,
			wantMessage: "Väärä PIN-koodi",
		},
		{
			name:        "rejected without message",
			resp:        jsonResponse(200, `{"success":false}`),
			wantKind:    ErrRejected,
			wantMessage: UnknownErrorMessage,
		},
		{
			name:        "message field on error status",
			resp:        jsonResponse(500, `{"message":"maintenance"}`),
			wantKind:    ErrRejected,
			wantMessage: "maintenance",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Classify(tc.resp, tc.err, successFlag)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantKind)
			if tc.wantMessage != "" {
				assert.Equal(t, tc.wantMessage, MessageOf(err))
			}
		})
	}
}

func TestClassifyAcceptsSuccess(t *testing.T) {
	c := NewClassifier(marker)

	p, err := c.Classify(jsonResponse(200, `{"success":true,"newBalance":120.5}`), nil, successFlag)
	require.NoError(t, err)
	assert.False(t, p.IsArray())
	assert.True(t, p.Bool("success"))

	p, err = c.Classify(jsonResponse(200, `[]`), nil, func(p Payload) bool { return p.IsArray() })
	require.NoError(t, err)
	assert.True(t, p.IsArray())
	assert.Empty(t, p.Array)
}

func TestClassifyEmptyMarkerNeverBlocks(t *testing.T) {
	c := NewClassifier("")
	_, err := c.Classify(jsonResponse(403, `{"error":"anything"}`), nil, successFlag)
	assert.ErrorIs(t, err, ErrRejected)
}

type balanceReply struct {
	Message string           `json:"message" validate:"required"`
	Balance *decimal.Decimal `json:"balance" validate:"required"`
}

type customerReply struct {
	FirstName string `json:"first_name" validate:"required"`
}

type identityReply struct {
	Customer  *customerReply `json:"customer"   validate:"required"`
	AccountID *int           `json:"account_id" validate:"required"`
}

func TestDecodeValid(t *testing.T) {
	c := NewClassifier(marker)
	accept := func(Payload) bool { return true }

	t.Run("complete payload", func(t *testing.T) {
		p, err := c.Classify(jsonResponse(200, `{"message":"Balance retrieved successfully","balance":80}`), nil, accept)
		require.NoError(t, err)

		var reply balanceReply
		require.NoError(t, DecodeValid(p, &reply))
		assert.True(t, decimal.NewFromInt(80).Equal(*reply.Balance))
	})

	t.Run("missing required field", func(t *testing.T) {
		p, err := c.Classify(jsonResponse(200, `{"message":"Balance retrieved successfully"}`), nil, accept)
		require.NoError(t, err)

		var reply balanceReply
		assert.ErrorIs(t, DecodeValid(p, &reply), ErrMalformedResponse)
	})

	t.Run("nested field missing", func(t *testing.T) {
		p, err := c.Classify(jsonResponse(200, `{"customer":{"last_name":"Lovelace"},"account_id":0}`), nil, accept)
		require.NoError(t, err)

		var reply identityReply
		assert.ErrorIs(t, DecodeValid(p, &reply), ErrMalformedResponse)
	})

	t.Run("zero account id is present", func(t *testing.T) {
		p, err := c.Classify(jsonResponse(200, `{"customer":{"first_name":"Ada"},"account_id":0}`), nil, accept)
		require.NoError(t, err)

		var reply identityReply
		require.NoError(t, DecodeValid(p, &reply))
		assert.Equal(t, 0, *reply.AccountID)
	})

	t.Run("wrong type", func(t *testing.T) {
		p, err := c.Classify(jsonResponse(200, `{"message":"ok","balance":"lots"}`), nil, accept)
		require.NoError(t, err)

		var reply balanceReply
		assert.ErrorIs(t, DecodeValid(p, &reply), ErrMalformedResponse)
	})
}

type entryReply struct {
	ID   *int   `json:"transaction_id"   validate:"required"`
	Time string `json:"transaction_time" validate:"required"`
}

func TestDecodeElements(t *testing.T) {
	c := NewClassifier(marker)
	isArray := func(p Payload) bool { return p.IsArray() }

	p, err := c.Classify(jsonResponse(200, `[{"transaction_id":1,"transaction_time":"2024-01-01T10:00:00"}]`), nil, isArray)
	require.NoError(t, err)
	entries, err := DecodeElements[entryReply](p)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, *entries[0].ID)

	p, err = c.Classify(jsonResponse(200, `[{"transaction_time":"2024-01-01T10:00:00"}]`), nil, isArray)
	require.NoError(t, err)
	_, err = DecodeElements[entryReply](p)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "", MessageOf(nil))
	assert.Equal(t, "plain", MessageOf(errors.New("plain")))
	assert.Equal(t, "card blocked", MessageOf(&Error{Kind: ErrCardBlocked}))
	assert.Equal(t, "card blocked: x", (&Error{Kind: ErrCardBlocked, Message: "x"}).Error())
}
