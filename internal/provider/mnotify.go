package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/storesense/notify-core/internal/domain"
	"go.uber.org/zap"
)

const defaultMNotifyBaseURL = "https://api.mnotify.com"

// mNotify caps sender ids at 11 characters, a protocol limit.
const mnotifySenderIDLimit = 11

const mnotifySuccessCode = "2000"

type mnotifyRequest struct {
	Recipient    []string `json:"recipient"`
	Sender       string   `json:"sender"`
	Message      string   `json:"message"`
	IsSchedule   bool     `json:"is_schedule"`
	ScheduleDate string   `json:"schedule_date"`
	SMSType      string   `json:"sms_type"`
}

// mnotifyResponse tolerates the provider returning code as either a number
// or a string.
type mnotifyResponse struct {
	Code    json.RawMessage `json:"code"`
	Status  string          `json:"status"`
	Message string          `json:"message"`
}

// MNotifyAdapter sends SMS through the mNotify quick-send HTTP API. The API
// key rides as a query parameter on the endpoint URL.
type MNotifyAdapter struct {
	client  *resty.Client
	baseURL string
	logger  *zap.Logger
}

func NewMNotifyAdapter(baseURL string, client *resty.Client, logger *zap.Logger) *MNotifyAdapter {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		trimmed = defaultMNotifyBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &MNotifyAdapter{
		client:  newClient(client),
		baseURL: trimmed,
		logger:  logger,
	}
}

func (a *MNotifyAdapter) Kind() domain.ProviderKind { return domain.ProviderMNotify }

func (a *MNotifyAdapter) Channel() domain.Channel { return domain.ChannelSMS }

func (a *MNotifyAdapter) Send(ctx context.Context, creds domain.Credentials, to, message string) error {
	if err := a.checkCredentials(creds); err != nil {
		a.logger.Warn("mnotify send skipped, credentials incomplete",
			zap.String("to", to),
		)
		return err
	}

	endpoint := a.baseURL + "/api/sms/quick"
	reqBody := mnotifyRequest{
		Recipient:    []string{to},
		Sender:       truncateSenderID(creds.SenderID),
		Message:      message,
		IsSchedule:   false,
		ScheduleDate: "",
		SMSType:      "otp",
	}

	response, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("key", creds.APIKey).
		SetBody(reqBody).
		Post(endpoint)
	if err != nil {
		a.logger.Error("mnotify request failed",
			zap.String("url", redactedURL(endpoint)),
			zap.Error(err),
		)
		return transportFailure(err)
	}

	statusCode := response.StatusCode()

	var parsed mnotifyResponse
	if err := json.Unmarshal(response.Body(), &parsed); err != nil {
		a.logger.Error("mnotify response unparseable",
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

	code := rawJSONString(parsed.Code)
	a.logger.Info("mnotify response classified",
		zap.Int("httpStatus", statusCode),
		zap.String("providerCode", code),
		zap.String("providerStatus", parsed.Status),
		zap.String("providerMessage", parsed.Message),
	)

	httpOK := statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices
	codeOK := code == mnotifySuccessCode
	// The status field overrides the code: a 2000 paired with an "error"
	// status is still a rejection.
	statusOK := !strings.EqualFold(strings.TrimSpace(parsed.Status), "error")

	if httpOK && codeOK && statusOK {
		return nil
	}

	return &SendError{
		Kind:       KindRejected,
		StatusCode: statusCode,
		Code:       code,
		Detail:     firstNonEmpty(parsed.Message, parsed.Status),
	}
}

func (a *MNotifyAdapter) checkCredentials(creds domain.Credentials) error {
	missing := make([]string, 0, 2)
	if strings.TrimSpace(creds.APIKey) == "" {
		missing = append(missing, "apiKey")
	}
	if strings.TrimSpace(creds.SenderID) == "" {
		missing = append(missing, "senderId")
	}
	if len(missing) > 0 {
		return missingCredentials("mnotify", missing...)
	}
	return nil
}

func truncateSenderID(senderID string) string {
	trimmed := strings.TrimSpace(senderID)
	if len(trimmed) > mnotifySenderIDLimit {
		return trimmed[:mnotifySenderIDLimit]
	}
	return trimmed
}

// rawJSONString normalizes a JSON scalar to its bare string form, so a
// numeric 2000 and the string "2000" compare equal.
func rawJSONString(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}

	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber.String()
	}

	return trimmed
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

var _ Adapter = (*MNotifyAdapter)(nil)
