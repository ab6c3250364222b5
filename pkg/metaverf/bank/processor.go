package bank

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
)

// Processor executes instructions for a single program
type Processor interface {
	Process(ctx context.Context, ic *InstructionContext) error
}

// Resolver locates the processor for a program id
type Resolver interface {
	GetProcessor(program ed25519.PublicKey) (Processor, bool)
}

// Programs is a Resolver over a fixed set of registered processors
type Programs struct {
	processors map[string]Processor
}

func NewPrograms() *Programs {
	return &Programs{
		processors: make(map[string]Processor),
	}
}

// Register binds a processor to a program id, replacing any existing one
func (p *Programs) Register(program ed25519.PublicKey, processor Processor) {
	p.processors[base58.Encode(program)] = processor
}

// GetProcessor implements Resolver.GetProcessor
func (p *Programs) GetProcessor(program ed25519.PublicKey) (Processor, bool) {
	processor, ok := p.processors[base58.Encode(program)]
	return processor, ok
}
