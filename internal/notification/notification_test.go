package notification

import (
	"net/http"
	"testing"

	"github.com/coopledger/coopledger/config"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
)

func TestSendWebhook_NoURLConfigured(t *testing.T) {
	config.MockConfig(&config.Configuration{})

	err := SendWebhook(Webhook{Event: "transaction.posted", Payload: map[string]string{"id": "txn_1"}})
	assert.NoError(t, err)
}

func TestSendWebhook_Delivers(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	cnf := &config.Configuration{}
	cnf.Notification.Webhook.Url = "http://hooks.local/ledger"
	cnf.Notification.Webhook.Headers = map[string]string{"X-Signature": "sig"}
	config.MockConfig(cnf)

	var gotSignature string
	httpmock.RegisterResponder("POST", "http://hooks.local/ledger",
		func(req *http.Request) (*http.Response, error) {
			gotSignature = req.Header.Get("X-Signature")
			return httpmock.NewJsonResponse(200, map[string]string{"status": "ok"})
		})

	err := SendWebhook(Webhook{Event: "transaction.posted", Payload: map[string]string{"id": "txn_1"}})
	assert.NoError(t, err)
	assert.Equal(t, "sig", gotSignature)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestSendWebhook_RetriesOnServerError(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	cnf := &config.Configuration{}
	cnf.Notification.Webhook.Url = "http://hooks.local/ledger"
	config.MockConfig(cnf)

	calls := 0
	httpmock.RegisterResponder("POST", "http://hooks.local/ledger",
		func(req *http.Request) (*http.Response, error) {
			calls++
			if calls < 3 {
				return httpmock.NewStringResponse(500, "boom"), nil
			}
			return httpmock.NewJsonResponse(200, map[string]string{"status": "ok"})
		})

	err := SendWebhook(Webhook{Event: "transaction.reversed"})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}
