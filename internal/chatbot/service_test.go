package chatbot_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducnv-dev/shoestore-backend/internal/chatbot"
	"github.com/ducnv-dev/shoestore-backend/internal/product"
)

// scriptedGenerator returns its canned replies in order. The first call is
// always the attribute extraction, the second the customer-facing reply.
type scriptedGenerator struct {
	replies []string
	prompts []string
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	reply := g.replies[0]
	g.replies = g.replies[1:]
	return reply, nil
}

type stubProducts struct {
	product.Service

	findFunc  func(ctx context.Context, query product.LookupQuery) (*product.Product, error)
	lastQuery product.LookupQuery
}

func (s *stubProducts) FindByAttributes(ctx context.Context, query product.LookupQuery) (*product.Product, error) {
	s.lastQuery = query
	return s.findFunc(ctx, query)
}

func TestService_Chat_ProductFound(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		"```json\n{\"brand\": \"nike\", \"name\": \"Air Force 1\", \"color\": \"white\", \"size\": \"42\"}\n```",
		"The Nike Air Force 1 is in stock!",
	}}
	products := &stubProducts{
		findFunc: func(ctx context.Context, query product.LookupQuery) (*product.Product, error) {
			return &product.Product{Name: "Nike Air Force 1", Brand: "nike", Price: 110}, nil
		},
	}
	svc := chatbot.NewService(gen, products)

	reply, err := svc.Chat(context.Background(), "do you have white air force 1 size 42?", nil)
	require.NoError(t, err)
	assert.Equal(t, "The Nike Air Force 1 is in stock!", reply)

	assert.Equal(t, "nike Air Force 1", products.lastQuery.Name, "lookup name is brand plus model name")
	assert.Equal(t, "white", products.lastQuery.Color)
	assert.Equal(t, "42", products.lastQuery.Size)

	require.Len(t, gen.prompts, 2)
	assert.Contains(t, gen.prompts[1], "Nike Air Force 1", "reply prompt carries the product info")
}

func TestService_Chat_ProductNotFound(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		`{"brand": "puma", "name": "Suede", "color": "", "size": ""}`,
		"Sorry, we do not carry that one right now.",
	}}
	products := &stubProducts{
		findFunc: func(ctx context.Context, query product.LookupQuery) (*product.Product, error) {
			return nil, product.ErrNotFound
		},
	}
	svc := chatbot.NewService(gen, products)

	reply, err := svc.Chat(context.Background(), "got any puma suede?", nil)
	require.NoError(t, err)
	assert.Equal(t, "Sorry, we do not carry that one right now.", reply)

	require.Len(t, gen.prompts, 2)
	assert.Contains(t, gen.prompts[1], "product does not exist")
	assert.Contains(t, gen.prompts[1], "puma Suede")
}

func TestService_Chat_NoAttributes(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		`{"brand": "", "name": "", "color": "", "size": ""}`,
		"Which shoe are you after?",
	}}
	products := &stubProducts{
		findFunc: func(ctx context.Context, query product.LookupQuery) (*product.Product, error) {
			t.Fatal("must not hit the catalog when nothing was extracted")
			return nil, nil
		},
	}
	svc := chatbot.NewService(gen, products)

	reply, err := svc.Chat(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "Which shoe are you after?", reply)

	require.Len(t, gen.prompts, 2)
	assert.Contains(t, gen.prompts[1], "at least one item")
}

func TestService_Chat_UnparseableExtraction(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		"I think the customer wants sneakers.",
		"Which shoe are you after?",
	}}
	products := &stubProducts{
		findFunc: func(ctx context.Context, query product.LookupQuery) (*product.Product, error) {
			t.Fatal("must not hit the catalog on an unparseable extraction")
			return nil, nil
		},
	}
	svc := chatbot.NewService(gen, products)

	reply, err := svc.Chat(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "Which shoe are you after?", reply)
}

func TestService_Chat_ConversationInExtractionPrompt(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		`{"brand": "", "name": "", "color": "", "size": ""}`,
		"ok",
	}}
	svc := chatbot.NewService(gen, &stubProducts{})

	_, err := svc.Chat(context.Background(), "and in black?", []string{"do you have air max?", "yes we do"})
	require.NoError(t, err)

	require.NotEmpty(t, gen.prompts)
	for _, past := range []string{"do you have air max?", "yes we do"} {
		assert.True(t, strings.Contains(gen.prompts[0], past), "history entry %q missing from extraction prompt", past)
	}
}
