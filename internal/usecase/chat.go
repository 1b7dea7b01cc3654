package usecase

import (
	"fmt"
	"log/slog"

	"github.com/syntrava/assistant-gateway/internal/domain"
	obsctx "github.com/syntrava/assistant-gateway/internal/observability"
	"github.com/syntrava/assistant-gateway/internal/prompt"
)

// PromptSelector resolves a persona for an untrusted mode string.
type PromptSelector interface {
	Select(mode string) prompt.Profile
}

// Postprocessor turns raw model output into the final answer. fallback
// reports that nothing usable remained and the fixed message was substituted.
type Postprocessor interface {
	Process(raw string, sentenceBudget int) (answer string, fallback bool)
}

// TokenEstimator sizes the outgoing context for metrics.
type TokenEstimator interface {
	EstimateMessages(msgs []domain.Message, model string) int
}

// ChatReply is the pipeline result plus diagnostics for metrics.
type ChatReply struct {
	domain.Reply
	PromptTokens int
	HistoryTurns int
	Fallback     bool
}

// ChatService runs one inbound message through the full pipeline:
// sanitize history, select the persona, assemble the context, call the
// completion API once and post-process the text.
type ChatService struct {
	Client  domain.CompletionClient
	Prompts PromptSelector
	Post    Postprocessor
	Tokens  TokenEstimator
	Policy  HistoryPolicy
	Model   string
}

// NewChatService constructs a ChatService with its dependencies.
func NewChatService(client domain.CompletionClient, prompts PromptSelector, post Postprocessor, tokens TokenEstimator, policy HistoryPolicy, model string) ChatService {
	return ChatService{Client: client, Prompts: prompts, Post: post, Tokens: tokens, Policy: policy, Model: model}
}

// Reply validates in, calls the upstream model and returns the cleaned answer.
// Errors are classified with domain sentinels; upstream failures wrap ErrUpstream.
func (s ChatService) Reply(ctx domain.Context, in domain.ChatInput) (ChatReply, error) {
	lg := obsctx.LoggerFromContext(ctx)
	if client := obsctx.ClientIDFromContext(ctx); client != "" {
		lg = lg.With(slog.String("client", client))
		ctx = obsctx.ContextWithLogger(ctx, lg)
	}

	history := SanitizeHistory(in.History, s.Policy)
	profile := s.Prompts.Select(in.Mode)

	req, err := AssembleContext(profile.SystemPrompt, history, in.UserMessage, s.Policy.MaxChars)
	if err != nil {
		return ChatReply{}, err
	}

	out := ChatReply{Reply: domain.Reply{Mode: profile.Mode}, HistoryTurns: len(history), PromptTokens: -1}
	if s.Tokens != nil {
		out.PromptTokens = s.Tokens.EstimateMessages(req.Messages, s.Model)
	}
	lg.Debug("chat context assembled",
		slog.String("mode", string(profile.Mode)),
		slog.Int("history_turns", out.HistoryTurns),
		slog.Int("prompt_tokens", out.PromptTokens))

	raw, err := s.Client.Complete(ctx, req)
	if err != nil {
		lg.Error("chat completion failed", slog.String("mode", string(profile.Mode)), slog.Any("error", err))
		return ChatReply{}, fmt.Errorf("op=chat.Reply: %w", err)
	}

	out.Answer, out.Fallback = s.Post.Process(raw, profile.SentenceBudget)
	if out.Fallback {
		lg.Warn("empty completion replaced by fallback", slog.String("mode", string(profile.Mode)), slog.Int("raw_bytes", len(raw)))
	}
	return out, nil
}
