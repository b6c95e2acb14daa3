package orchestrator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestScenario_IncrementalPass(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		pagesRoot string
		html      string
	}{
		{name: "pages at source root", pagesRoot: "", html: "main/index.html"},
		{name: "pages below assets", pagesRoot: "assets", html: "assets/main/index.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, tt.pagesRoot)
			ctx := context.Background()

			f.write(t, "assets/scripts/packages/b.ts", "export const b = 1\n")
			_, err := f.orch.BuildAll(ctx)
			require.NoError(t, err)
			f.compiler.Reset()

			f.write(t, "constants/a.ts", "export const a = 1\n")
			f.write(t, tt.html, "<html></html>\n")

			artifacts, err := f.orch.Refresh(ctx)
			require.NoError(t, err)

			assert.Equal(t, []string{
				f.out("constants/a.js"),
				f.out("main/index.html"),
			}, outputs(artifacts))

			specs := f.compiler.Specs()
			require.Len(t, specs, 1)
			assert.Equal(t, domain.CategoryConstants, specs[0].Category)
			assert.NoFileExists(t, f.out("assets/main/index.html"))
		})
	}
}
