package fixer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrinceMuichkine/stackshift/internal/oracle"
	"github.com/PrinceMuichkine/stackshift/internal/validate"
)

func writeProjectFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

const counterWithoutDirective = `export default function Counter() {
  const [n, setN] = useState(0);
  return <button>{n}</button>;
}
`

const counterFixed = "\"use client\";\n\n" + counterWithoutDirective

func TestFixIssues_AppliesOracleFix(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "src/Counter.tsx", counterWithoutDirective)

	stub := &oracle.Stub{Response: "```tsx\n" + counterFixed + "```"}
	f, err := New(root, stub)
	require.NoError(t, err)

	result := &validate.Result{
		Convention: validate.ConventionApp,
		Errors:     []string{"Missing 'use client' directive in client component: src/Counter.tsx"},
	}

	fixed, err := f.FixIssues(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/Counter.tsx"}, fixed)

	content, err := os.ReadFile(filepath.Join(root, "src/Counter.tsx"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `"use client";`)

	require.NotEmpty(t, stub.Prompts)
	assert.Contains(t, stub.Prompts[0], "components")
	assert.Contains(t, stub.Prompts[0], "app router migration")
}

func TestFixIssues_OracleFailureIsSkipped(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "src/Counter.tsx", counterWithoutDirective)

	stub := &oracle.Stub{Err: oracle.ErrUnavailable}
	f, err := New(root, stub)
	require.NoError(t, err)

	result := &validate.Result{
		Convention: validate.ConventionApp,
		Errors:     []string{"Missing 'use client' directive in client component: src/Counter.tsx"},
	}

	fixed, err := f.FixIssues(context.Background(), result)
	require.NoError(t, err, "oracle failures never abort the pass")
	assert.Empty(t, fixed)

	content, err := os.ReadFile(filepath.Join(root, "src/Counter.tsx"))
	require.NoError(t, err)
	assert.Equal(t, counterWithoutDirective, string(content), "file untouched on oracle failure")
}

func TestFixIssues_UnknownFileIsSkipped(t *testing.T) {
	root := t.TempDir()

	stub := &oracle.Stub{Response: "```\nwhatever\n```"}
	f, err := New(root, stub)
	require.NoError(t, err)

	result := &validate.Result{
		Convention: validate.ConventionApp,
		Errors:     []string{"Missing default export in route: app/missing/page.tsx"},
	}

	fixed, err := f.FixIssues(context.Background(), result)
	require.NoError(t, err)
	assert.Empty(t, fixed)
}

func TestRelatedFiles_RoutingFollowsImports(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "app/users/page.tsx", "import UserCard from 'src/components/UserCard'\nimport Missing from 'src/components/Missing'\nexport default function Page() { return <UserCard/> }\n")
	writeProjectFile(t, root, "src/components/UserCard.tsx", "export default function UserCard() { return null }\n")

	f, err := New(root, &oracle.Stub{})
	require.NoError(t, err)

	related := f.RelatedFiles("app/users/page.tsx", "routing")
	assert.Equal(t, []string{"src/components/UserCard.tsx"}, related, "only import targets that exist on disk")
}

func TestRelatedFiles_ComponentsByBaseNameToken(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "src/components/Avatar.tsx", "export default function Avatar() { return null }\n")
	writeProjectFile(t, root, "src/pages/Profile.tsx", "import Avatar from '../components/Avatar'\nexport default function Profile() { return <Avatar/> }\n")
	writeProjectFile(t, root, "src/pages/Settings.tsx", "export default function Settings() { return null }\n")

	f, err := New(root, &oracle.Stub{})
	require.NoError(t, err)

	related := f.RelatedFiles("src/components/Avatar.tsx", "components")
	assert.Contains(t, related, "src/pages/Profile.tsx")
	assert.NotContains(t, related, "src/pages/Settings.tsx")
	assert.NotContains(t, related, "src/components/Avatar.tsx", "a file is never related to itself")
}

func TestRelatedFiles_OtherCategoriesHaveNone(t *testing.T) {
	f, err := New(t.TempDir(), &oracle.Stub{})
	require.NoError(t, err)
	assert.Empty(t, f.RelatedFiles("a.tsx", "imports"))
	assert.Empty(t, f.RelatedFiles("a.tsx", "styles"))
}

func TestCreateMissingFiles(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "next.config.js", "module.exports = {}\n")

	stub := &oracle.Stub{Response: "```tsx\nexport default function Page() { return null }\n```"}
	f, err := New(root, stub)
	require.NoError(t, err)

	created, err := f.CreateMissingFiles(context.Background(), validate.ConventionApp)
	require.NoError(t, err)

	// next.config.js already exists; the two app files are generated.
	assert.ElementsMatch(t, []string{"app/layout.tsx", "app/page.tsx"}, created)

	content, err := os.ReadFile(filepath.Join(root, "app/page.tsx"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "export default function Page")
}
