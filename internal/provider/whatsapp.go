package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/storesense/notify-core/internal/domain"
	"go.uber.org/zap"
)

const defaultMetaGraphBaseURL = "https://graph.facebook.com/v17.0"

type whatsappTextPayload struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

type whatsappRequest struct {
	MessagingProduct string              `json:"messaging_product"`
	RecipientType    string              `json:"recipient_type"`
	To               string              `json:"to"`
	Type             string              `json:"type"`
	Text             whatsappTextPayload `json:"text"`
}

type whatsappError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type whatsappResponse struct {
	Error *whatsappError `json:"error"`
}

// MetaWhatsAppAdapter sends text messages through the Meta WhatsApp Business
// Cloud API. Success is HTTP success plus the absence of an error object in
// the response body.
type MetaWhatsAppAdapter struct {
	client  *resty.Client
	baseURL string
	logger  *zap.Logger
}

func NewMetaWhatsAppAdapter(baseURL string, client *resty.Client, logger *zap.Logger) *MetaWhatsAppAdapter {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		trimmed = defaultMetaGraphBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &MetaWhatsAppAdapter{
		client:  newClient(client),
		baseURL: trimmed,
		logger:  logger,
	}
}

func (a *MetaWhatsAppAdapter) Kind() domain.ProviderKind { return domain.ProviderMetaWhatsApp }

func (a *MetaWhatsAppAdapter) Channel() domain.Channel { return domain.ChannelWhatsApp }

func (a *MetaWhatsAppAdapter) Send(ctx context.Context, creds domain.Credentials, to, message string) error {
	if err := a.checkCredentials(creds); err != nil {
		a.logger.Warn("whatsapp send skipped, credentials incomplete",
			zap.String("to", to),
		)
		return err
	}

	endpoint := a.baseURL + "/" + creds.PhoneNumberID + "/messages"
	reqBody := whatsappRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text: whatsappTextPayload{
			PreviewURL: false,
			Body:       message,
		},
	}

	response, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(creds.AccessToken).
		SetBody(reqBody).
		Post(endpoint)
	if err != nil {
		a.logger.Error("whatsapp request failed",
			zap.String("url", redactedURL(endpoint)),
			zap.Error(err),
		)
		return transportFailure(err)
	}

	statusCode := response.StatusCode()

	var parsed whatsappResponse
	if err := json.Unmarshal(response.Body(), &parsed); err != nil {
		a.logger.Error("whatsapp response unparseable",
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

	errorMessage := ""
	errorCode := ""
	if parsed.Error != nil {
		errorMessage = parsed.Error.Message
		if parsed.Error.Code != 0 {
			errorCode = strconv.Itoa(parsed.Error.Code)
		}
	}
	a.logger.Info("whatsapp response classified",
		zap.Int("httpStatus", statusCode),
		zap.String("providerErrorCode", errorCode),
		zap.String("providerErrorMessage", errorMessage),
	)

	httpOK := statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices
	if httpOK && parsed.Error == nil {
		return nil
	}

	return &SendError{
		Kind:       KindRejected,
		StatusCode: statusCode,
		Code:       errorCode,
		Detail:     errorMessage,
	}
}

func (a *MetaWhatsAppAdapter) checkCredentials(creds domain.Credentials) error {
	missing := make([]string, 0, 2)
	if strings.TrimSpace(creds.AccessToken) == "" {
		missing = append(missing, "accessToken")
	}
	if strings.TrimSpace(creds.PhoneNumberID) == "" {
		missing = append(missing, "phoneNumberId")
	}
	if len(missing) > 0 {
		return missingCredentials("whatsapp", missing...)
	}
	return nil
}
