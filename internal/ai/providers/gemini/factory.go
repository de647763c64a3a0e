package gemini

import (
	"github.com/yildizm/nexus/internal/ai"
)

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(config *ai.ProviderConfig) (ai.Provider, error) {
	if config == nil {
		config = f.DefaultConfig()
	}

	return New(FromProviderConfig(config)), nil
}

func (f *Factory) Type() string {
	return ProviderName
}

func (f *Factory) DefaultConfig() *ai.ProviderConfig {
	return DefaultConfig().ToProviderConfig()
}

func Register() error {
	return ai.RegisterProvider(ProviderName, NewFactory())
}
