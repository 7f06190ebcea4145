// factory.go - Provider factory for creating provider instances

package ai

import (
	"fmt"
	"log"
	"sort"

	"github.com/settleloop/payment-ai-service/configs"
)

// providerConstructors maps AI_PROVIDER values to constructors.
// To add a provider: implement the Provider interface and register it here.
var providerConstructors = map[string]func() Provider{
	"google_ai_studio": func() Provider {
		return NewGoogleAIStudioProvider(configs.GOOGLE_AI_STUDIO_API_KEY, configs.AI_MODEL)
	},
	"openrouter": func() Provider {
		return NewOpenRouterProvider(configs.OPENROUTER_API_KEY, configs.AI_MODEL)
	},
}

// CreateProvider creates the AI provider selected by configuration.
func CreateProvider() (Provider, error) {
	return CreateNamedProvider(configs.AI_PROVIDER)
}

// CreateNamedProvider creates a provider by registry key.
func CreateNamedProvider(name string) (Provider, error) {
	constructor, ok := providerConstructors[name]
	if !ok {
		available := make([]string, 0, len(providerConstructors))
		for key := range providerConstructors {
			available = append(available, key)
		}
		sort.Strings(available)
		return nil, fmt.Errorf("unknown AI provider %q (available: %v)", name, available)
	}

	log.Printf("🔵 Creating AI provider: %s", name)
	return constructor(), nil
}
