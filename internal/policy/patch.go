package policy

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

//go:embed templates/trust.json
var trustTemplate []byte

//go:embed templates/permissions.json
var permissionsTemplate []byte

// TrustTemplate returns the embedded deploy-role trust document template.
func TrustTemplate() []byte {
	return bytes.Clone(trustTemplate)
}

// PermissionsTemplate returns the embedded deploy-role permission document
// template.
func PermissionsTemplate() []byte {
	return bytes.Clone(permissionsTemplate)
}

// IncompleteSubstitutionError reports placeholders or line patterns that no
// supplied value could replace. The named document must not be used.
type IncompleteSubstitutionError struct {
	Document string
	Missing  []string
}

func (e *IncompleteSubstitutionError) Error() string {
	return fmt.Sprintf("incomplete substitution in %s document: %s", e.Document, strings.Join(e.Missing, ", "))
}

// RepoRef builds the OIDC subject pattern scoping role assumption to one
// branch of one repository.
func RepoRef(org, repo, branch string) string {
	return fmt.Sprintf("repo:%s/%s:ref:refs/heads/%s", org, repo, branch)
}

const (
	providerPlaceholder = "<oidc-provider-arn>"
	repoRefsPlaceholder = "<repo-refs>"
)

// PatchTrust structurally substitutes the discovered OIDC provider ARN and
// the repo-ref subject patterns into a trust document template. The
// template's federated principal placeholder becomes providerARN; a subject
// condition list containing the repo-refs placeholder is replaced wholesale
// by repoRefs.
func PatchTrust(template []byte, providerARN string, repoRefs []string) ([]byte, error) {
	var doc Document
	if err := json.Unmarshal(template, &doc); err != nil {
		return nil, fmt.Errorf("parsing trust template: %w", err)
	}

	var missing []string
	for i := range doc.Statement {
		st := &doc.Statement[i]
		if st.Principal != nil && st.Principal.Federated == providerPlaceholder {
			if providerARN == "" {
				missing = append(missing, "oidc-provider-arn")
			} else {
				st.Principal.Federated = providerARN
			}
		}
		for _, values := range st.Condition {
			for key, list := range values {
				if !slices.Contains(list, repoRefsPlaceholder) {
					continue
				}
				if len(repoRefs) == 0 {
					missing = append(missing, "repo-refs")
					continue
				}
				values[key] = slices.Clone(repoRefs)
			}
		}
	}
	if len(missing) > 0 {
		return nil, &IncompleteSubstitutionError{Document: "trust", Missing: missing}
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing trust document: %w", err)
	}
	if left := placeholders(out); len(left) > 0 {
		return nil, &IncompleteSubstitutionError{Document: "trust", Missing: left}
	}
	return out, nil
}

// PatchPermissions substitutes every <name> placeholder in a permission
// document template by literal string replacement, then scans the result for
// leftover markers. This mode never parses the document.
func PatchPermissions(template []byte, values map[string]string) ([]byte, error) {
	doc := string(template)

	var missing []string
	for _, name := range placeholders(template) {
		value, ok := values[name]
		if !ok || value == "" {
			missing = append(missing, name)
			continue
		}
		doc = strings.ReplaceAll(doc, "<"+name+">", value)
	}
	if len(missing) > 0 {
		return nil, &IncompleteSubstitutionError{Document: "permissions", Missing: missing}
	}
	if left := placeholders([]byte(doc)); len(left) > 0 {
		return nil, &IncompleteSubstitutionError{Document: "permissions", Missing: left}
	}
	return []byte(doc), nil
}

var (
	roleLinePattern   = regexp.MustCompile(`^(\s*)role-to-assume:.*$`)
	regionLinePattern = regexp.MustCompile(`^(\s*)aws-region:.*$`)
)

// PatchWorkflow rewrites the role-to-assume and aws-region lines of a
// workflow file in place, preserving indentation. The file is treated as
// opaque lines, never parsed as YAML. Both patterns must match at least
// once; name identifies the file in the failure.
func PatchWorkflow(name string, content []byte, roleARN, region string) ([]byte, error) {
	lines := strings.Split(string(content), "\n")

	var roleMatched, regionMatched bool
	for i, line := range lines {
		if m := roleLinePattern.FindStringSubmatch(line); m != nil {
			lines[i] = m[1] + "role-to-assume: " + roleARN
			roleMatched = true
			continue
		}
		if m := regionLinePattern.FindStringSubmatch(line); m != nil {
			lines[i] = m[1] + "aws-region: " + region
			regionMatched = true
		}
	}

	var missing []string
	if !roleMatched {
		missing = append(missing, "role-to-assume")
	}
	if !regionMatched {
		missing = append(missing, "aws-region")
	}
	if len(missing) > 0 {
		return nil, &IncompleteSubstitutionError{Document: name, Missing: missing}
	}
	return []byte(strings.Join(lines, "\n")), nil
}

var placeholderPattern = regexp.MustCompile(`<[a-z][a-z0-9-]*>`)

// placeholders returns the sorted unique placeholder names in doc.
func placeholders(doc []byte) []string {
	var names []string
	for _, marker := range placeholderPattern.FindAllString(string(doc), -1) {
		name := strings.Trim(marker, "<>")
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
