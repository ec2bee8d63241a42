package config

// SampleConfig returns a fully commented starter configuration.
func SampleConfig() string {
	return `# Production monitoring configuration
version: "1.0"

# Environment label used in the output tree and consolidated reports.
environment: prod

collection:
  # Collection window: full days before today, ending one second
  # before today's midnight.
  days_back: 2

  # CloudWatch Logs filter pattern applied server-side.
  filter_pattern: "ERROR -METRICS_AGG -nginxinternal"

  # Safety caps for pagination.
  max_entries: 10000
  max_iterations: 100
  page_size: 1000

  # Concurrent service/region pairings.
  workers: 4

# Monitored deployments: service -> region -> target.
services:
  SRA:
    NA1:
      dashboard: production-na1-SRA-Dashboard
      aws_region: us-west-2
      log_group: production-na1-schedule-rules-automation
    UK:
      dashboard: production-uk-SRA-Dashboard
      aws_region: eu-west-2
      log_group: production-uk-schedule-rules-automation
  SRM:
    NA1:
      dashboard: production-na1-SRM-Dashboard
      aws_region: us-west-2
      log_group: production-na1-schedule-requests-manager

classifier:
  # Package prefix stripped from stack frames when locating errors.
  namespace: com.nice.saas.wfo

  # Classes whose errors are dropped entirely.
  exclude_patterns:
    - NotificationDispatcherImpl

  # disable_anonymize: true turns off PII redaction. Keep it on for
  # anything that leaves your machine.
  disable_anonymize: false

ai:
  # Lambda handler endpoint and key. Leave empty to skip AI analysis.
  endpoint: ""
  api_key: ""
  timeout: 120s

  # Optional file with application context prepended to prompts.
  context_file: ""

output:
  dir: output
  default_format: terminal   # terminal|json|markdown|csv
  color_mode: auto           # auto|always|never
  verbose: false
`
}

// MinimalSampleConfig returns a compact configuration with only the
// settings most deployments change.
func MinimalSampleConfig() string {
	return `version: "1.0"
environment: prod

services:
  SRA:
    NA1:
      dashboard: production-na1-SRA-Dashboard
      aws_region: us-west-2
      log_group: production-na1-schedule-rules-automation

ai:
  endpoint: ""
  api_key: ""

output:
  dir: output
`
}
