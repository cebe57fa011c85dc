package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shinyyama/petverse-backend/internal/reqctx"
	"google.golang.org/genai"
)

var ErrNotConfigured = errors.New("advisor not configured")

// Advisor answers adopter questions about a listing.
type Advisor interface {
	Ask(ctx context.Context, pet PetFacts, question string) (string, error)
}

type GeminiAdvisor struct {
	apiKey string
	model  string
}

func NewGeminiAdvisor(apiKey, model string) *GeminiAdvisor {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiAdvisor{apiKey: apiKey, model: model}
}

func (a *GeminiAdvisor) Ask(ctx context.Context, pet PetFacts, question string) (string, error) {
	if a == nil || a.apiKey == "" {
		return "", ErrNotConfigured
	}
	rid := reqctx.RID(ctx)
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  a.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Printf("[advisor] rid=%s stage=client_init err=%v", rid, err)
		return "", err
	}

	parts := []*genai.Part{
		genai.NewPartFromText(advisorPrompt),
		genai.NewPartFromText(BuildPetPrompt(pet, question)),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}
	temp := float32(0.3)
	config := &genai.GenerateContentConfig{
		Temperature: &temp,
	}
	start := time.Now()
	log.Printf("[advisor] rid=%s stage=gemini_start model=%s pet=%q", rid, a.model, pet.Name)
	res, err := client.Models.GenerateContent(ctx, a.model, contents, config)
	if err != nil {
		log.Printf("[advisor] rid=%s stage=gemini_fail model=%s err=%v", rid, a.model, err)
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	log.Printf("[advisor] rid=%s stage=gemini_done ms=%d", rid, time.Since(start).Milliseconds())
	return CleanAnswer(res.Text())
}
