package config

import (
	"strings"
)

// GenerateConfigContent generates a starter configuration file with
// every value commented out, ready for a user to uncomment and adapt.
func GenerateConfigContent() string {
	var b strings.Builder
	b.WriteString(commentOutConfigValues(GetDefaultsContent()))
	b.WriteString(exampleSections)
	return b.String()
}

// exampleSections show the optional config surface that the embedded
// defaults do not carry.
const exampleSections = `
# [settings]
# targets = ["claude", "cursor"]
# hooks = ["timestamp"]

# [[rules]]
# name = "coding-style"
# source = "rules/coding-style.md"
# targets = ["claude", "cursor"]

# [sync]
# skills = "catalog/skills"

# [mcp]
# agents = ["claude"]
# [mcp.servers.github]
# command = "npx"
# args = ["-y", "@modelcontextprotocol/server-github"]
`

// commentOutConfigValues takes TOML content and comments out all
// non-comment, non-blank lines that contain configuration values
func commentOutConfigValues(content string) string {
	lines := strings.Split(content, "\n")
	var result []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			result = append(result, line)
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			result = append(result, line)
			continue
		}
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			result = append(result, line)
			continue
		}

		result = append(result, "# "+line)
	}

	return strings.Join(result, "\n")
}
