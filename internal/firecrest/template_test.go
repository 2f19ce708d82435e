package firecrest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate(t *testing.T) {
	t.Run("substitutes placeholders", func(t *testing.T) {
		out, err := RenderTemplate("curl -T {{ file_name }} {{url}}", map[string]string{
			"file_name": "data.bin",
			"url":       "https://storage/part1",
		})
		require.NoError(t, err)
		assert.Equal(t, "curl -T data.bin https://storage/part1", out)
	})

	t.Run("missing key is an error", func(t *testing.T) {
		_, err := RenderTemplate("{{known}} {{unknown}}", map[string]string{"known": "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown")
	})

	t.Run("lists every missing key", func(t *testing.T) {
		_, err := RenderTemplate("{{a}} {{b}}", map[string]string{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "a")
		assert.Contains(t, err.Error(), "b")
	})

	t.Run("repeated placeholder", func(t *testing.T) {
		out, err := RenderTemplate("{{x}}-{{x}}", map[string]string{"x": "v"})
		require.NoError(t, err)
		assert.Equal(t, "v-v", out)
	})

	t.Run("no placeholders passes through", func(t *testing.T) {
		out, err := RenderTemplate("#!/bin/bash\necho done", nil)
		require.NoError(t, err)
		assert.Equal(t, "#!/bin/bash\necho done", out)
	})
}

func TestUploadScriptTemplateRenders(t *testing.T) {
	out, err := RenderTemplate(uploadScriptTemplate, map[string]string{
		"file_name":           "archive.tar",
		"file_size":           "1048576",
		"max_part_size":       "524288",
		"parts_upload_urls":   "https://storage/p1\nhttps://storage/p2",
		"complete_upload_url": "https://storage/complete",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "archive.tar")
	assert.Contains(t, out, "https://storage/complete")
}
