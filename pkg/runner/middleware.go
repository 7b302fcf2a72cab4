package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/dumpling/pkg/domain"
)

// DeliveryPolicy decides whether a delivery may proceed.
// It returns false to cancel the delivery without an error.
type DeliveryPolicy func(ctx context.Context, contact string, channels []domain.Channel) (bool, error)

// MultiPolicy chains policies; the first refusal wins.
func MultiPolicy(policies ...DeliveryPolicy) DeliveryPolicy {
	return func(ctx context.Context, contact string, channels []domain.Channel) (bool, error) {
		for _, p := range policies {
			ok, err := p(ctx, contact, channels)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}

// ConfirmationPolicy asks the user before a recipe leaves the machine, that is
// whenever the email channel is involved. Other channels pass unasked.
func ConfirmationPolicy(handler IOHandler) DeliveryPolicy {
	return func(ctx context.Context, contact string, channels []domain.Channel) (bool, error) {
		if !includesEmail(channels) {
			return true, nil
		}
		to := contact
		if to == "" {
			to = "(no contact set)"
		}
		if err := handler.SystemOutput(ctx, fmt.Sprintf("Send the recipe by email to %s? [y/N]", to)); err != nil {
			return false, err
		}
		input, err := handler.Input(ctx)
		if err != nil {
			return false, err
		}
		input = strings.TrimSpace(strings.ToLower(input))
		return input == "y" || input == "yes", nil
	}
}

// AutoApprovePolicy allows every delivery.
func AutoApprovePolicy() DeliveryPolicy {
	return func(context.Context, string, []domain.Channel) (bool, error) {
		return true, nil
	}
}

func includesEmail(channels []domain.Channel) bool {
	if len(channels) == 0 {
		return true
	}
	for _, ch := range channels {
		if ch == domain.ChannelEmail {
			return true
		}
	}
	return false
}
