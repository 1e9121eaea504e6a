package chatbot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ducnv-dev/shoestore-backend/internal/product"
)

type Service interface {
	Chat(ctx context.Context, message string, conversation []string) (string, error)
}

type service struct {
	generator Generator
	products  product.Service
}

func NewService(generator Generator, products product.Service) Service {
	return &service{generator: generator, products: products}
}

const extractPrompt = `Here is request: %s, here is old conversation %s. Figure out whether the customer is talking about an old product or a new one. You must switch to strict mode: analyse the user's search request to extract the following attributes: brand, name, color, size. Return the result strictly in the following format: {"brand": ..., "name": ..., "color": ..., "size": ...}. The name must have each word capitalized. If any attribute is not found, set its value to "". Do not add explanations, descriptions, or anything else. Return only data inside { }. Values are converted to lowercase and english.`

const askForDetailsPrompt = `Please provide at least one item so we can check the stock for you, reply like a seller would, reply in customer language, only vietnamese and english`

const notFoundPrompt = `product does not exist, consider yourself as a shoes salesperson informing them of the availability of the product they are looking for %s, %s, %s, %s. If you see anything missing brand, name, color, size, ask the customer to fill it in. reply in customer language, only vietnamese and english, short about 3 sentences`

const foundPrompt = `Here is old message %s. Here is product info: %s, here is customer request %s. Product stock notification from product, indicating whether it's in stock or out of stock using the format: product out of stock or in stock. If it's in stock, add a short description, price, size, color to inform the customer, write as naturally as possible, like a shoes seller would, reply in customer language, only vietnamese and english, short about 3 sentences, no use '*'`

type extractedAttributes struct {
	Brand string `json:"brand"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Size  string `json:"size"`
}

func (a extractedAttributes) empty() bool {
	return a.Brand == "" && a.Name == "" && a.Color == "" && a.Size == ""
}

func (s *service) Chat(ctx context.Context, message string, conversation []string) (string, error) {
	history, err := json.Marshal(conversation)
	if err != nil {
		return "", fmt.Errorf("chatbot: failed to encode conversation: %w", err)
	}

	extracted, err := s.generator.Generate(ctx, fmt.Sprintf(extractPrompt, message, history))
	if err != nil {
		return "", fmt.Errorf("chatbot: attribute extraction failed: %w", err)
	}

	replyPrompt := askForDetailsPrompt

	var attrs extractedAttributes
	if err := json.Unmarshal([]byte(stripCodeFences(extracted)), &attrs); err != nil {
		log.Warn().Err(err).Str("raw", extracted).Msg("chatbot: unparseable attribute extraction")
	} else if !attrs.empty() {
		// The original pipeline searches by "brand name" so a bare model name
		// still matches the catalog entry.
		name := strings.TrimSpace(attrs.Brand + " " + attrs.Name)

		found, lookupErr := s.products.FindByAttributes(ctx, product.LookupQuery{
			Name:  name,
			Brand: attrs.Brand,
			Color: attrs.Color,
			Size:  attrs.Size,
		})
		switch {
		case errors.Is(lookupErr, product.ErrNotFound):
			replyPrompt = fmt.Sprintf(notFoundPrompt, attrs.Brand, name, attrs.Color, attrs.Size)
		case lookupErr != nil:
			return "", fmt.Errorf("chatbot: product lookup failed: %w", lookupErr)
		default:
			info, marshalErr := json.Marshal(found)
			if marshalErr != nil {
				return "", fmt.Errorf("chatbot: failed to encode product info: %w", marshalErr)
			}
			replyPrompt = fmt.Sprintf(foundPrompt, history, info, message)
		}
	}

	reply, err := s.generator.Generate(ctx, replyPrompt)
	if err != nil {
		return "", fmt.Errorf("chatbot: reply generation failed: %w", err)
	}
	return reply, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
