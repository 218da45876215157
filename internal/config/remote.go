package config

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// remoteEnvironment is the response body of a config server
// GET /{name}/{profile} request.
type remoteEnvironment struct {
	Name            string           `json:"name"`
	Profiles        []string         `json:"profiles"`
	PropertySources []propertySource `json:"propertySources"`
}

type propertySource struct {
	Name   string                 `json:"name"`
	Source map[string]interface{} `json:"source"`
}

// fetchRemote retrieves properties for the application from the config server
// and returns them keyed by lower-cased dotted path. Property sources listed
// first take precedence over later ones.
func fetchRemote(baseURL, name, profile string, timeout time.Duration) (map[string]interface{}, error) {
	url := fmt.Sprintf("%s/%s/%s", strings.TrimRight(baseURL, "/"), name, profile)

	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("get %s: status %d: %s", url, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var env remoteEnvironment
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}

	props := make(map[string]interface{})
	for i := len(env.PropertySources) - 1; i >= 0; i-- {
		for key, value := range env.PropertySources[i].Source {
			props[strings.ToLower(key)] = value
		}
	}
	return props, nil
}

// envKey returns the environment variable that overrides the given key.
func envKey(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
