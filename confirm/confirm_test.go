package confirm

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tradefleet/core"
	"github.com/hupe1980/tradefleet/internal/testutil"
)

func testSecret(seed string) string {
	return base64.StdEncoding.EncodeToString([]byte("identity-secret-" + seed))
}

func TestDeriveCode_Deterministic(t *testing.T) {
	secret := testSecret("a")

	first, err := DeriveCode(secret, 1700000000, TagAccept)
	require.NoError(t, err)
	second, err := DeriveCode(secret, 1700000000, TagAccept)
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestDeriveCode_VariesWithInputs(t *testing.T) {
	secret := testSecret("a")

	base, err := DeriveCode(secret, 1700000000, TagList)
	require.NoError(t, err)

	otherTag, err := DeriveCode(secret, 1700000000, TagAccept)
	require.NoError(t, err)
	assert.NotEqual(t, base, otherTag)

	otherTime, err := DeriveCode(secret, 1700000001, TagList)
	require.NoError(t, err)
	assert.NotEqual(t, base, otherTime)

	otherSecret, err := DeriveCode(testSecret("b"), 1700000000, TagList)
	require.NoError(t, err)
	assert.NotEqual(t, base, otherSecret)
}

func TestDeriveCode_MalformedSecret(t *testing.T) {
	_, err := DeriveCode("not-base64!!!", 1700000000, TagList)
	assert.Error(t, err)
}

func TestFinalizeAll_DerivesFreshCodes(t *testing.T) {
	secret := testSecret("a")
	transport := testutil.NewFakeTransport()

	var gotTimestamp int64
	var gotList, gotAccept string
	transport.ApproveFn = func(_ context.Context, _ core.SessionHandle, timestamp int64, listCode, acceptCode string) error {
		gotTimestamp = timestamp
		gotList = listCode
		gotAccept = acceptCode
		return nil
	}

	p := NewProtocol(transport)
	h := &testutil.FakeHandle{Account: "bot-1"}

	before := time.Now().Unix()
	require.NoError(t, p.FinalizeAll(context.Background(), h, secret))
	after := time.Now().Unix()

	assert.GreaterOrEqual(t, gotTimestamp, before)
	assert.LessOrEqual(t, gotTimestamp, after)

	wantList, err := DeriveCode(secret, gotTimestamp, TagList)
	require.NoError(t, err)
	wantAccept, err := DeriveCode(secret, gotTimestamp, TagAccept)
	require.NoError(t, err)
	assert.Equal(t, wantList, gotList)
	assert.Equal(t, wantAccept, gotAccept)
}

func TestFinalizeAll_TransportError(t *testing.T) {
	transport := testutil.NewFakeTransport()
	transport.ApproveFn = func(context.Context, core.SessionHandle, int64, string, string) error {
		return errors.New("remote refused")
	}

	p := NewProtocol(transport)
	err := p.FinalizeAll(context.Background(), &testutil.FakeHandle{Account: "bot-1"}, testSecret("a"))

	var confErr *core.ConfirmationError
	require.ErrorAs(t, err, &confErr)
}

func TestFinalizeOffer_RespondsOnlyToMatch(t *testing.T) {
	secret := testSecret("a")
	transport := testutil.NewFakeTransport()

	transport.ListFn = func(context.Context, core.SessionHandle, int64, string) ([]core.Confirmation, error) {
		return []core.Confirmation{{ID: "c1"}, {ID: "c2"}, {ID: "c3"}}, nil
	}
	transport.LookupOfferIDFn = func(_ context.Context, _ core.SessionHandle, c core.Confirmation, _ int64, _ string) (string, error) {
		switch c.ID {
		case "c1":
			return "offer-100", nil
		case "c2":
			return "", errors.New("details unavailable")
		default:
			return "offer-200", nil
		}
	}

	var responded []string
	transport.RespondFn = func(_ context.Context, _ core.SessionHandle, c core.Confirmation, _ int64, _, _ string, accept bool) error {
		responded = append(responded, c.ID)
		assert.True(t, accept)
		return nil
	}

	p := NewProtocol(transport)
	err := p.FinalizeOffer(context.Background(), &testutil.FakeHandle{Account: "bot-1"}, secret, "offer-200")
	require.NoError(t, err)
	assert.Equal(t, []string{"c3"}, responded)
}

func TestFinalizeOffer_NoMatch(t *testing.T) {
	transport := testutil.NewFakeTransport()
	transport.ListFn = func(context.Context, core.SessionHandle, int64, string) ([]core.Confirmation, error) {
		return []core.Confirmation{{ID: "c1"}}, nil
	}
	transport.LookupOfferIDFn = func(context.Context, core.SessionHandle, core.Confirmation, int64, string) (string, error) {
		return "offer-999", nil
	}

	p := NewProtocol(transport)
	err := p.FinalizeOffer(context.Background(), &testutil.FakeHandle{Account: "bot-1"}, testSecret("a"), "offer-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoMatchingConfirmation)

	var confErr *core.ConfirmationError
	require.ErrorAs(t, err, &confErr)
	assert.Equal(t, "offer-1", confErr.OfferID)
}

func TestFinalizeOffer_ListError(t *testing.T) {
	transport := testutil.NewFakeTransport()
	transport.ListFn = func(context.Context, core.SessionHandle, int64, string) ([]core.Confirmation, error) {
		return nil, errors.New("rate limited")
	}

	p := NewProtocol(transport)
	err := p.FinalizeOffer(context.Background(), &testutil.FakeHandle{Account: "bot-1"}, testSecret("a"), "offer-1")

	var confErr *core.ConfirmationError
	require.ErrorAs(t, err, &confErr)
}
