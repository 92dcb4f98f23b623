package currency

import (
	"fmt"
	"strings"
)

type (
	Provider    string
	MergePolicy string
)

const (
	JSONFeedProvider         Provider = "JSONFeed"
	ExchangeRatesAPIProvider Provider = "ExchangeRatesAPI"
	EmptyProvider            Provider = ""

	// MergeNone decodes the feed and discards it.
	MergeNone        MergePolicy = "none"
	MergeUpsert      MergePolicy = "upsert"
	EmptyMergePolicy MergePolicy = ""
)

func ConvertToProvidersFromStringSlice(values []string) ([]Provider, error) {
	providers := make([]Provider, 0, len(values))

	for _, str := range values {
		provider, err := ConvertToProviderFromString(str)
		if err != nil {
			return nil, err
		}

		providers = append(providers, provider)
	}

	return providers, nil
}

func ConvertToProviderFromString(str string) (Provider, error) {
	switch strings.ToLower(str) {
	case "jsonfeed":
		return JSONFeedProvider, nil
	case "exchangeratesapi":
		return ExchangeRatesAPIProvider, nil
	}

	return "", fmt.Errorf("value %s is not valid Provider", str)
}

func ConvertToMergePolicyFromString(str string) (MergePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "", "none":
		return MergeNone, nil
	case "upsert":
		return MergeUpsert, nil
	}

	return "", fmt.Errorf("value %s is not valid MergePolicy", str)
}
