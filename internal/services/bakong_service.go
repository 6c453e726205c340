package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/bakongbot/internal/models"
	"github.com/example/bakongbot/internal/utils"
)

const checkTransactionPath = "/v1/check_transaction_by_md5"

type checkTransactionRequest struct {
	MD5 string `json:"md5"`
}

type checkTransactionResponse struct {
	ResponseCode    int    `json:"responseCode"`
	ResponseMessage string `json:"responseMessage"`
}

// BakongService resolves payment status against the Bakong open API.
type BakongService struct {
	apiURL string
	token  string
	client *http.Client
	log    *logrus.Logger
}

// NewBakongService creates a Bakong API client. The configured developer token
// is inspected up front so an expired credential is visible at boot instead of
// as a stream of failed checks.
func NewBakongService(apiURL, token string, timeout time.Duration, log *logrus.Logger) *BakongService {
	s := &BakongService{
		apiURL: strings.TrimRight(apiURL, "/"),
		token:  token,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}

	expiry, err := utils.TokenExpiry(token)
	switch {
	case err != nil:
		s.log.WithError(err).Warn("could not inspect Bakong token expiry")
	case time.Now().After(expiry):
		s.log.WithField("expired_at", expiry).Warn("Bakong developer token is expired, status checks will fail")
	default:
		s.log.WithField("expires_at", expiry).Info("Bakong developer token loaded")
	}

	return s
}

// CheckPayment reports whether the transaction behind the given MD5
// fingerprint has settled. Any transport or protocol failure is returned as an
// error so callers can leave the transaction pending.
func (s *BakongService) CheckPayment(ctx context.Context, md5Hash string) (models.PaymentStatus, error) {
	body, err := json.Marshal(checkTransactionRequest{MD5: md5Hash})
	if err != nil {
		return "", fmt.Errorf("marshal check payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+checkTransactionPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create check request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute check request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read check response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return "", fmt.Errorf("bakong rejected the developer token: status %d", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("bakong check failed: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var result checkTransactionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("unmarshal check response: %w", err)
	}

	// Bakong answers responseCode 0 only for settled transactions. Anything
	// else, including "not found", means the QR has not been paid yet.
	if result.ResponseCode == 0 {
		return models.PaymentStatusPaid, nil
	}
	return models.PaymentStatusUnpaid, nil
}
