// Package prompt builds the instruction text sent to the chat-completion model
// for each analysis stage. Every builder is a pure function of its inputs.
package prompt

import (
	"fmt"

	"foodsafe/internal/domain"
	"foodsafe/internal/port"
	"foodsafe/internal/textclean"
)

// SystemInstruction is the system-role message for every stage.
const SystemInstruction = "You are a professional medical advisor."

// BaseLanguage is the language the first half of the recommendation is written in.
const BaseLanguage = domain.LanguageEnglish

// Prompt is a fully formatted system/user instruction pair.
type Prompt struct {
	System string
	User   string
}

// Messages renders the prompt as a two-message chat conversation.
func (p Prompt) Messages() []port.ChatMessage {
	return []port.ChatMessage{
		{Role: port.RoleSystem, Content: p.System},
		{Role: port.RoleUser, Content: p.User},
	}
}

// Nutrition returns the prompt that refines OCR text from a food-pack label.
func Nutrition(cleaned []string) Prompt {
	return Prompt{
		System: SystemInstruction,
		User: fmt.Sprintf(`I am using OCR to extract the Nutritional information from the Food pack labels.
I need you to refine the text: %s. Just return the nutritional facts and Ingredients.
Based on the ingredients, what is the Food name? No other words.`, textclean.Join(cleaned)),
	}
}

// Medical returns the prompt that refines OCR text from a medical report.
func Medical(cleaned []string) Prompt {
	return Prompt{
		System: SystemInstruction,
		User: fmt.Sprintf(`I am using OCR to extract the text from a medical report.
Refine the text: %s, remove any noise, and provide a clear summary of the medical findings.
Just return the important medical details and diagnosis if available, no extra words.`, textclean.Join(cleaned)),
	}
}

// Safety returns the prompt that cross-references refined nutrition and medical
// text. language is interpolated as given.
func Safety(nutrition, medical string, language domain.Language) Prompt {
	return Prompt{
		System: SystemInstruction,
		User: fmt.Sprintf(`Dear User,

Based on the extracted text from your food pack labels: %s,
and the details from your medical report: %s,
please evaluate the ingredients for safety.
Provide a short recommendation on whether the food is safe to consume,
including the safe quantity for intake if applicable.
If the food is not recommended, briefly explain why it should be avoided.

Please provide the response in the following format:

1. First, a short and clear recommendation in **%s**.
2. After that, a short and clear recommendation in **%s** that corresponds to the %s response.`,
			nutrition, medical, BaseLanguage, language, BaseLanguage),
	}
}
