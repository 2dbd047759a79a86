package alerts

import (
	"context"
	"sort"

	"github.com/dkemper/fritzwatch/pkg/model"
)

// Decide selects at most one threshold alert per destination for the
// current remaining time. Per destination the rules are scanned from
// the largest minute value down; the first rule that applies
// (minutes >= remaining) and was not yet recorded for day is selected
// and scanning stops. Pure apart from the dedup oracle; holds no state
// between calls.
func Decide(ctx context.Context, remaining model.TimeRemaining, destinations []model.Destination, day string, wasSent DedupOracle) ([]Decision, error) {
	var decisions []Decision

	for _, dest := range destinations {
		rules := make([]model.ThresholdRule, len(dest.Thresholds))
		copy(rules, dest.Thresholds)
		sort.Slice(rules, func(i, j int) bool {
			return rules[i].Minutes > rules[j].Minutes
		})

		for _, rule := range rules {
			if rule.Minutes < remaining.RemainingMinutes {
				break
			}
			sent, err := wasSent(ctx, dest.Number, day, rule.Minutes)
			if err != nil {
				return nil, err
			}
			if sent {
				continue
			}
			decisions = append(decisions, Decision{
				Number:       dest.Number,
				Message:      rule.Message,
				ThresholdKey: rule.Minutes,
			})
			break
		}
	}

	return decisions, nil
}

// DecideConnectivity selects the once-per-day connectivity-failure
// alert for each admin destination, keyed by the sentinel
// model.ConnectivityKey.
func DecideConnectivity(ctx context.Context, destinations []model.Destination, day, message string, wasSent DedupOracle) ([]Decision, error) {
	var decisions []Decision

	for _, dest := range destinations {
		if !dest.Admin {
			continue
		}
		sent, err := wasSent(ctx, dest.Number, day, model.ConnectivityKey)
		if err != nil {
			return nil, err
		}
		if sent {
			continue
		}
		decisions = append(decisions, Decision{
			Number:       dest.Number,
			Message:      message,
			ThresholdKey: model.ConnectivityKey,
		})
	}

	return decisions, nil
}
