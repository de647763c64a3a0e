package config

// SampleConfig returns a documented configuration file with every option
func SampleConfig() string {
	return `# Nexus-9 configuration
version: "1.0"

ai:
  # Model provider. Only gemini is supported.
  provider: gemini
  model: gemini-3-flash-preview
  # Leave empty for the public endpoint
  endpoint: ""
  # Prefer the API_KEY or GEMINI_API_KEY environment variables
  api_key: ""
  # 0 disables the request deadline
  timeout: 0s
  # Reasoning token budget, -1 lets the model decide
  thinking_budget: 1024
  # Reject replies that break the result schema and clamp scores to 0-100
  strict_validation: true

prompt:
  cohort: 2026 AI Seed Benchmarks
  median_valuation: $17.9M
  good_burn_multiple: 1.5
  good_rule_of_40: 40
  scenarios:
    - The Big Squeeze
    - Talent Leak
    - Commoditization

timeline:
  extraction: 800ms
  stress_test: 1200ms
  audit: 600ms

output:
  # text, json, markdown or csv
  default_format: text
  # auto, always or never
  color_mode: auto
  verbose: false
  # default, high-contrast or minimal
  theme: default
  no_emoji: false

server:
  addr: 127.0.0.1:8090
  read_timeout: 15s
  write_timeout: 0s
  shutdown_timeout: 10s
  max_upload_size: 20971520

watch:
  debounce: 500ms

telemetry:
  enabled: false
  # file path, or - for stderr
  output: "-"
  pretty: false
`
}

// MinimalSampleConfig returns a compact configuration with the common settings
func MinimalSampleConfig() string {
	return `version: "1.0"
ai:
  provider: gemini
  model: gemini-3-flash-preview
output:
  default_format: text
`
}
