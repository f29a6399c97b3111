package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jacob-mennell/fast-insurance-claims/model"
)

// AgentDispatcher maps free-text questions onto a fixed set of tools.
// There is no planning and no memory: one question, one tool, one answer.
type AgentDispatcher struct {
	store  *ClaimStore
	scorer FraudScorer
}

// FallbackMessage is returned when no tool matches the question.
const FallbackMessage = "Sorry, I could not understand that. Try asking about a claim's status, its details, its fraud risk, listing claims, or creating a claim."

// NewAgentDispatcher creates a dispatcher over the given store and scorer.
func NewAgentDispatcher(store *ClaimStore, scorer FraudScorer) *AgentDispatcher {
	return &AgentDispatcher{store: store, scorer: scorer}
}

type toolKind int

const (
	toolNone toolKind = iota
	toolClaimStatus
	toolGetClaim
	toolListClaims
	toolCheckFraud
	toolCreateClaim
)

// toolCall is the tagged variant produced by parseQuestion.
type toolCall struct {
	kind       toolKind
	identifier string // claim id or claim number for single-claim tools
	status     string // optional filter for toolListClaims
	create     *model.ClaimCreate
}

var (
	claimRefPattern = regexp.MustCompile(`(?i)claim\s+(?:id\s+|number\s+)?([A-Za-z0-9-]+)`)
	amountPattern   = regexp.MustCompile(`(?:\$|£|€)?\s?(\d+(?:\.\d+)?)`)
	namePattern     = regexp.MustCompile(`for\s+([A-Z][A-Za-z]*(?:\s+[A-Z][A-Za-z]*)*)`)
	statusPattern   = regexp.MustCompile(`(?i)\b(pending|approved|rejected)\b`)
)

func parseQuestion(question string) toolCall {
	lower := strings.ToLower(question)

	ref := ""
	if m := claimRefPattern.FindStringSubmatch(question); m != nil {
		ref = m[1]
	}

	switch {
	case strings.Contains(lower, "fraud") || strings.Contains(lower, "suspicious"):
		if ref == "" {
			return toolCall{kind: toolNone}
		}
		return toolCall{kind: toolCheckFraud, identifier: ref}

	case strings.Contains(lower, "status"):
		if ref == "" {
			return toolCall{kind: toolNone}
		}
		return toolCall{kind: toolClaimStatus, identifier: ref}

	case strings.Contains(lower, "create") || strings.Contains(lower, "new claim") || strings.Contains(lower, "submit"):
		return toolCall{kind: toolCreateClaim, create: parseCreate(question)}

	case strings.Contains(lower, "all claims") || strings.Contains(lower, "list") || strings.Contains(lower, "show claims"):
		call := toolCall{kind: toolListClaims}
		if m := statusPattern.FindStringSubmatch(lower); m != nil {
			call.status = m[1]
		}
		return call

	case ref != "" && (strings.Contains(lower, "detail") || strings.Contains(lower, "fetch") ||
		strings.Contains(lower, "get") || strings.Contains(lower, "show") || strings.Contains(lower, "what")):
		return toolCall{kind: toolGetClaim, identifier: ref}
	}

	return toolCall{kind: toolNone}
}

// parseCreate extracts claimant and amount from a creation request.
// The claim number is generated since callers rarely supply one in prose.
func parseCreate(question string) *model.ClaimCreate {
	name := ""
	if m := namePattern.FindStringSubmatch(question); m != nil {
		name = m[1]
	}

	var amount *float64
	// Skip the claim reference when scanning for an amount
	stripped := claimRefPattern.ReplaceAllString(question, "")
	if m := amountPattern.FindStringSubmatch(stripped); m != nil {
		var v float64
		fmt.Sscanf(m[1], "%f", &v)
		amount = &v
	}

	if name == "" || amount == nil {
		return nil
	}

	return &model.ClaimCreate{
		ClaimNumber:  "AGT-" + uuid.New().String()[:8],
		ClaimantName: name,
		Amount:       amount,
	}
}

// Dispatch answers one question. It never returns an error to the
// caller: unmappable questions get the fallback message and tool
// failures are reported as text.
func (d *AgentDispatcher) Dispatch(ctx context.Context, question string) string {
	call := parseQuestion(question)

	switch call.kind {
	case toolClaimStatus:
		claim, err := d.store.Resolve(ctx, call.identifier)
		if err != nil {
			return d.lookupError(call.identifier, err)
		}
		return fmt.Sprintf("Claim %s is %s.", claim.ClaimNumber, claim.Status)

	case toolGetClaim:
		claim, err := d.store.Resolve(ctx, call.identifier)
		if err != nil {
			return d.lookupError(call.identifier, err)
		}
		return fmt.Sprintf("Claim %s: claimant %s, amount %.2f, status %s.",
			claim.ClaimNumber, claim.ClaimantName, claim.Amount, claim.Status)

	case toolListClaims:
		claims, err := d.store.List(ctx, call.status)
		if err != nil {
			return "Something went wrong while listing claims."
		}
		if len(claims) == 0 {
			return "There are no matching claims."
		}
		var b strings.Builder
		fmt.Fprintf(&b, "There are %d claims:", len(claims))
		for _, claim := range claims {
			fmt.Fprintf(&b, "\n- %s: %s, %.2f, %s", claim.ClaimNumber, claim.ClaimantName, claim.Amount, claim.Status)
		}
		return b.String()

	case toolCheckFraud:
		claim, err := d.store.Resolve(ctx, call.identifier)
		if err != nil {
			return d.lookupError(call.identifier, err)
		}
		result, err := d.scorer.Score(ctx, claim)
		if err != nil {
			return fmt.Sprintf("Could not score claim %s right now.", claim.ClaimNumber)
		}
		return fmt.Sprintf("Claim %s looks %s (fraud probability %.2f).",
			claim.ClaimNumber, result.PredictedLabel, result.Probability)

	case toolCreateClaim:
		if call.create == nil {
			return "To create a claim, tell me the claimant name and the amount, e.g. \"create a claim for John Doe with amount 500\"."
		}
		claim, err := d.store.Create(ctx, call.create)
		if err != nil {
			return "Failed to create the claim: " + err.Error()
		}
		return fmt.Sprintf("Created claim %s for %s with amount %.2f (id %d).",
			claim.ClaimNumber, claim.ClaimantName, claim.Amount, claim.ID)
	}

	return FallbackMessage
}

func (d *AgentDispatcher) lookupError(identifier string, err error) string {
	if errors.Is(err, ErrNotFound) {
		return fmt.Sprintf("Claim %s not found.", identifier)
	}
	return "Something went wrong while looking up the claim."
}
