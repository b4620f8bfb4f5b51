package auth

import "github.com/Skotchmaster/storefront/internal/models"

type Provider struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	user models.User
}

var providers = []Provider{
	{ID: "google", Name: "Google", user: models.User{Email: "user@gmail.com", Name: "Google User"}},
	{ID: "facebook", Name: "Facebook", user: models.User{Email: "user@facebook.com", Name: "Facebook User"}},
	{ID: "apple", Name: "Apple", user: models.User{Email: "user@icloud.com", Name: "Apple User"}},
}

func Providers() []Provider {
	out := make([]Provider, len(providers))
	copy(out, providers)
	return out
}

func providerByID(id string) (Provider, bool) {
	for _, p := range providers {
		if p.ID == id {
			return p, true
		}
	}
	return Provider{}, false
}
