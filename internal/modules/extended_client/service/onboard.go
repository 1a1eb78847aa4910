package service

import (
	"context"
	"net/http"
	"strings"

	"stark_bridge/internal/models"
)

// Onboard: POST /auth/onboard на хосте онбординга. Возвращает data из ответа как есть.
func (c *Client) Onboard(ctx context.Context, payload *models.OnboardingPayload) (map[string]any, error) {
	url := strings.TrimRight(c.onboardingBase, "/") + "/auth/onboard"

	resp, err := c.do(ctx, "onboard", http.MethodPost, url, nil, payload)
	if err != nil {
		return nil, err
	}

	data := map[string]any{}
	if err := decodeOK("onboard", resp, &data); err != nil {
		return nil, err
	}
	return data, nil
}
