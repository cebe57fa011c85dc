package ai

import (
	"fmt"
	"strings"
)

const advisorPrompt = `You are a friendly adoption counsellor for PetVerse, a pet adoption marketplace.
Answer the adopter's question using only the listing below and general pet-care knowledge.

Rules:
* Do not invent medical history, vaccinations, or temperament facts not present in the listing.
* If the listing does not say, tell the adopter to ask the shelter or owner through the adoption chat.
* Keep the answer under 120 words, plain text, no markdown.`

type PetFacts struct {
	Name        string
	Category    string
	Description string
	AdoptionFee string
	ListedBy    string
}

// BuildPetPrompt renders the listing block passed alongside advisorPrompt.
func BuildPetPrompt(p PetFacts, question string) string {
	var b strings.Builder
	b.WriteString("Listing:\n")
	fmt.Fprintf(&b, "Name: %s\n", p.Name)
	fmt.Fprintf(&b, "Category: %s\n", p.Category)
	if d := strings.TrimSpace(p.Description); d != "" {
		fmt.Fprintf(&b, "Description: %s\n", d)
	}
	if p.AdoptionFee != "" {
		fmt.Fprintf(&b, "Adoption fee: %s\n", p.AdoptionFee)
	}
	if p.ListedBy != "" {
		fmt.Fprintf(&b, "Listed by: %s\n", p.ListedBy)
	}
	fmt.Fprintf(&b, "\nQuestion: %s", strings.TrimSpace(question))
	return b.String()
}
