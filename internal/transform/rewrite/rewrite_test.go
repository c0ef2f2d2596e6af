package rewrite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterToNext_Imports(t *testing.T) {
	src := "import { Link, useNavigate, useParams } from 'react-router-dom';\n"

	out := string(RouterToNext([]byte(src)))

	assert.Contains(t, out, `import Link from "next/link";`)
	assert.Contains(t, out, `import { useRouter, useSearchParams } from "next/navigation";`)
	assert.NotContains(t, out, "react-router-dom")
}

func TestRouterToNext_OutletIsDropped(t *testing.T) {
	src := "import { Outlet } from 'react-router-dom';\n"

	out := string(RouterToNext([]byte(src)))

	assert.NotContains(t, out, "react-router-dom")
	assert.NotContains(t, out, "Outlet")
}

func TestRouterToNext_LinkAttributes(t *testing.T) {
	src := `<Link to="/about" state={fromDashboard}>About</Link>`

	out := string(RouterToNext([]byte(src)))

	assert.Contains(t, out, `<Link href="/about" shallow=true>`)
	assert.NotContains(t, out, "to=")
}

func TestRouterToNext_Navigation(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "navigate declaration",
			src:  "const navigate = useNavigate();",
			want: "const router = useRouter();",
		},
		{
			name: "string path",
			src:  "navigate('/home')",
			want: "router.push('/home')",
		},
		{
			name: "object argument",
			src:  "navigate({ pathname: next })",
			want: "router.push({ pathname: next })",
		},
		{
			name: "dynamic path becomes template literal",
			src:  "navigate(target)",
			want: "router.push(`${target}`)",
		},
		{
			name: "location hook",
			src:  "const here = useLocation();",
			want: "const here = usePathname();",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(RouterToNext([]byte(tt.src))))
		})
	}
}

func TestRouterToNext_ParamsDestructure(t *testing.T) {
	src := "const { id, tab } = useParams();"

	out := string(RouterToNext([]byte(src)))

	assert.Contains(t, out, "const searchParams = useSearchParams();")
	assert.Contains(t, out, `const id = searchParams.get("id");`)
	assert.Contains(t, out, `const tab = searchParams.get("tab");`)
}

func TestRouterToNext_Idempotent(t *testing.T) {
	src := []byte("import { Link, useNavigate } from 'react-router-dom';\n" +
		"const navigate = useNavigate();\n" +
		"navigate('/home');\n" +
		`<Link to="/about">About</Link>` + "\n")

	once := RouterToNext(src)
	twice := RouterToNext(once)

	assert.Equal(t, string(once), string(twice))
}

func TestImagesToNext_Tags(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "relative source moves to public images",
			src:  `<img src="./assets/logo.png" width="120" height="40">`,
			want: `<Image src="/images/logo.png" alt="" width={120} height={40} />`,
		},
		{
			name: "remote source is unoptimized",
			src:  `<img src="https://cdn.example.com/a.png">`,
			want: `<Image src="https://cdn.example.com/a.png" alt="" width={0} height={0} unoptimized />`,
		},
		{
			name: "public source stays in place",
			src:  `<img src="/banner.jpg" width={600} height={200}>`,
			want: `<Image src="/banner.jpg" alt="" width={600} height={200} />`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := string(ImagesToNext([]byte(tt.src)))
			assert.Contains(t, out, tt.want)
			assert.Contains(t, out, `import Image from "next/image";`)
		})
	}
}

func TestImagesToNext_CommentsOutAssetImports(t *testing.T) {
	src := "import logo from '../assets/logo.svg';\n"

	out := string(ImagesToNext([]byte(src)))

	assert.Contains(t, out, "// moved to public/images")
	assert.Contains(t, out, `// import logo from "/images/logo.svg"`)
}

func TestImagesToNext_Idempotent(t *testing.T) {
	src := []byte("import logo from '../assets/logo.png';\n" +
		`<img src="./assets/logo.png" width="120" height="40">` + "\n")

	once := ImagesToNext(src)
	twice := ImagesToNext(once)

	assert.Equal(t, string(once), string(twice))
}

func TestApply_WritesOnlyChangedFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(rel, content string) {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}

	write("src/Nav.tsx", "import { useNavigate } from 'react-router-dom';\nexport default function Nav() {\n  const navigate = useNavigate();\n  return null;\n}\n")
	write("src/Static.tsx", "export default function Static() {\n  return <h1>hi</h1>;\n}\n")

	paths := []string{"src/Nav.tsx", "src/Static.tsx"}

	modified, err := Apply(dir, paths)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/Nav.tsx"}, modified)

	content, err := os.ReadFile(filepath.Join(dir, "src/Nav.tsx"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `import { useRouter } from "next/navigation";`)
	assert.Contains(t, string(content), "const router = useRouter();")

	// Second run changes nothing.
	again, err := Apply(dir, paths)
	require.NoError(t, err)
	assert.Empty(t, again)
}
