package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/storesense/notify-core/internal/domain"
	"go.uber.org/zap"
)

const defaultHubtelBaseURL = "https://smsc.hubtel.com"

// Hubtel signals business-level success through a zero status plus a
// message text marker; HTTP 200 alone is not sufficient.
const hubtelSuccessMarker = "success"

type hubtelResponse struct {
	Status  *int   `json:"status"`
	Message string `json:"message"`
}

type hubtelBalanceResponse struct {
	Balance json.Number `json:"balance"`
}

// HubtelAdapter sends SMS through the Hubtel SMSC HTTP API. Credentials ride
// in the query string, so the request URL is never logged unredacted.
type HubtelAdapter struct {
	client  *resty.Client
	baseURL string
	logger  *zap.Logger
}

func NewHubtelAdapter(baseURL string, client *resty.Client, logger *zap.Logger) *HubtelAdapter {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		trimmed = defaultHubtelBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HubtelAdapter{
		client:  newClient(client),
		baseURL: trimmed,
		logger:  logger,
	}
}

func (a *HubtelAdapter) Kind() domain.ProviderKind { return domain.ProviderHubtel }

func (a *HubtelAdapter) Channel() domain.Channel { return domain.ChannelSMS }

func (a *HubtelAdapter) Send(ctx context.Context, creds domain.Credentials, to, message string) error {
	if err := a.checkSendCredentials(creds); err != nil {
		a.logger.Warn("hubtel send skipped, credentials incomplete",
			zap.String("to", to),
		)
		return err
	}

	endpoint := a.baseURL + "/v1/messages/send"
	response, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"clientid":     creds.ClientID,
			"clientsecret": creds.ClientSecret,
			"from":         creds.SenderID,
			"to":           to,
			"content":      message,
		}).
		Get(endpoint)
	if err != nil {
		a.logger.Error("hubtel request failed",
			zap.String("url", redactedURL(endpoint)),
			zap.Error(err),
		)
		return transportFailure(err)
	}

	statusCode := response.StatusCode()
	body := response.Body()

	var parsed hubtelResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		a.logger.Error("hubtel response unparseable",
			zap.Int("httpStatus", statusCode),
			zap.Error(err),
		)
		return &SendError{
			Kind:       KindTransport,
			StatusCode: statusCode,
			Detail:     "unparseable provider response",
			Cause:      err,
		}
	}

	providerStatus := "absent"
	if parsed.Status != nil {
		providerStatus = strconv.Itoa(*parsed.Status)
	}
	a.logger.Info("hubtel response classified",
		zap.Int("httpStatus", statusCode),
		zap.String("providerStatus", providerStatus),
		zap.String("providerMessage", parsed.Message),
	)

	httpOK := statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices
	statusOK := parsed.Status != nil && *parsed.Status == 0
	messageOK := strings.Contains(strings.ToLower(parsed.Message), hubtelSuccessMarker)

	if httpOK && statusOK && messageOK {
		return nil
	}

	return &SendError{
		Kind:       KindRejected,
		StatusCode: statusCode,
		Code:       providerStatus,
		Detail:     parsed.Message,
	}
}

// Balance fetches the remaining SMS account balance.
func (a *HubtelAdapter) Balance(ctx context.Context, creds domain.Credentials) (float64, error) {
	if err := a.checkAuthCredentials(creds); err != nil {
		return 0, err
	}

	endpoint := a.baseURL + "/v1/account/balance"
	response, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"clientid":     creds.ClientID,
			"clientsecret": creds.ClientSecret,
		}).
		Get(endpoint)
	if err != nil {
		return 0, transportFailure(err)
	}

	if response.StatusCode() < http.StatusOK || response.StatusCode() >= http.StatusMultipleChoices {
		return 0, &SendError{
			Kind:       KindRejected,
			StatusCode: response.StatusCode(),
			Detail:     "balance request rejected",
		}
	}

	var parsed hubtelBalanceResponse
	if err := json.Unmarshal(response.Body(), &parsed); err != nil {
		return 0, &SendError{
			Kind:       KindTransport,
			StatusCode: response.StatusCode(),
			Detail:     "unparseable balance response",
			Cause:      err,
		}
	}

	balance, err := parsed.Balance.Float64()
	if err != nil {
		return 0, &SendError{
			Kind:       KindTransport,
			StatusCode: response.StatusCode(),
			Detail:     fmt.Sprintf("invalid balance value %q", parsed.Balance.String()),
			Cause:      err,
		}
	}

	return balance, nil
}

func (a *HubtelAdapter) checkSendCredentials(creds domain.Credentials) error {
	missing := missingAuthFields(creds)
	if strings.TrimSpace(creds.SenderID) == "" {
		missing = append(missing, "senderId")
	}
	if len(missing) > 0 {
		return missingCredentials("hubtel", missing...)
	}
	return nil
}

func (a *HubtelAdapter) checkAuthCredentials(creds domain.Credentials) error {
	if missing := missingAuthFields(creds); len(missing) > 0 {
		return missingCredentials("hubtel", missing...)
	}
	return nil
}

func missingAuthFields(creds domain.Credentials) []string {
	missing := make([]string, 0, 3)
	if strings.TrimSpace(creds.ClientID) == "" {
		missing = append(missing, "clientId")
	}
	if strings.TrimSpace(creds.ClientSecret) == "" {
		missing = append(missing, "clientSecret")
	}
	return missing
}
