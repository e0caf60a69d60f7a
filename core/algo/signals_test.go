package algo

import (
	"testing"

	"github.com/huangsam/cadence/schema"
	"github.com/stretchr/testify/assert"
)

func TestExtractSignals(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    schema.StructuralSignals
	}{
		{
			name:    "empty",
			content: "",
			want:    schema.StructuralSignals{},
		},
		{
			name: "go file",
			content: `package foo

import (
	"fmt"
	"strings"

	// aliased
	y "github.com/x/y"
)

// ---- Section ----

type Foo struct{}

type bar interface{}

func (f *Foo) Do() {}

func New() *Foo { return nil }

var Exported = 1
`,
			want: schema.StructuralSignals{
				HasSectionMarkers:  true,
				SectionMarkerCount: 1,
				ExportCount:        3,
				ImportCount:        3,
				HasMultipleTypes:   true,
				MethodCount:        1,
			},
		},
		{
			name: "javascript module",
			content: `import React from 'react';
import { a } from './a';
const fs = require('fs');

export class Widget {
  render() {
    if (x) {
    }
  }
}

export function helper() {}
`,
			want: schema.StructuralSignals{
				ExportCount: 2,
				ImportCount: 3,
				MethodCount: 1,
			},
		},
		{
			name: "python module",
			content: `from os import path
import sys

# ==== Models ====

class A:
    def run(self):
        pass

class B:
    async def go(self):
        pass
`,
			want: schema.StructuralSignals{
				HasSectionMarkers:  true,
				SectionMarkerCount: 1,
				ImportCount:        2,
				HasMultipleTypes:   true,
				MethodCount:        2,
			},
		},
		{
			name: "region and mark markers",
			content: `// MARK: - Lifecycle
#region helpers
#endregion
region := 1
`,
			want: schema.StructuralSignals{
				HasSectionMarkers:  true,
				SectionMarkerCount: 3,
			},
		},
		{
			name:    "single go import",
			content: "import \"fmt\"\n",
			want:    schema.StructuralSignals{ImportCount: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSignals(tt.content))
		})
	}
}

func TestExtractSignalsSkipsControlFlow(t *testing.T) {
	content := `class Service {
  async load(id: string): Promise<User> {
    for (const x of xs) {
    }
    while (ok()) {
    }
    switch (kind) {
    }
  }
  private save(user) {
  }
}
`
	signals := ExtractSignals(content)
	assert.Equal(t, 2, signals.MethodCount)
	assert.False(t, signals.HasMultipleTypes)
}
