package pathalias

import (
	"testing"
)

func BenchmarkRewriteSpecifiers(b *testing.B) {
	a := makeAliases(
		"/project",
		"/project/dist/types",
		"/project/src",
		map[string][]string{
			"@app/*":  {"src/*"},
			"@lib/*":  {"src/lib/*"},
			"@config": {"src/config"},
		},
	)

	input := `import { User } from "@app/models/user";
import type { Logger } from "@lib/logger";
import * as config from "@config";
export type Ref = import("@app/models/ref").Ref;
import { Router } from "./router";`

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.RewriteSpecifiers(input, "/project/dist/types/api/index.d.ts")
	}
}
