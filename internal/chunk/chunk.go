// Package chunk implements the chunk templating step from spec.md §4.4:
// (graph, entryId) -> a single JS source string embedding the module
// registry and a small runtime loader. The loader's two resolved open
// questions (cache-before-execute, a single consistent CJS/ESM interop
// convention) are documented in SPEC_FULL.md §4.5 and DESIGN.md.
package chunk

import (
	"fmt"
	"strings"

	"github.com/ductc/ductc/internal/graph"
	"github.com/ductc/ductc/internal/moduleid"
)

// Render serializes g into the final chunk for entry, per spec.md §4.4.
func Render(g *graph.Graph, entry moduleid.ID) (string, error) {
	if !g.HasModule(entry) {
		return "", fmt.Errorf("chunk: entry %q not present in graph", entry)
	}

	order := append([]moduleid.ID{entry}, g.TransitiveDeps(entry)...)
	ids := g.ModuleIDs(order)

	var registry strings.Builder
	registry.WriteString("var modules = {\n")
	for _, id := range ids {
		m := g.GetModule(id)
		registry.WriteString(fmt.Sprintf("%q: [function(module, exports, require) {\n", string(id)))
		registry.WriteString(exportAllPreamble())
		registry.WriteString(m.Code)
		registry.WriteString(fmt.Sprintf("\n}, %q],\n", m.Kind.String()))
	}
	registry.WriteString("};\n")

	var out strings.Builder
	out.WriteString(registry.String())
	out.WriteString(fmt.Sprintf("var entry = %q;\n", string(entry)))
	out.WriteString(loaderBody())
	return out.String(), nil
}

// exportAllPreamble gives every module wrapper its own `__exportAll__`
// closure bound to that module's `exports` object, since `export * from`
// (spec.md §4.3) must copy enumerable properties into the *current*
// module's exports, not a shared one.
func exportAllPreamble() string {
	return "var __exportAll__ = function(ns) { for (var k in ns) { if (k !== 'default') exports[k] = ns[k]; } };\n"
}

// loaderBody is the runtime loader, cache-before-execute, with a single
// consistent interop convention: every wrapper receives
// (module, exports, require); module.exports is read back for CJS
// modules, the bare exports object for ESM modules.
func loaderBody() string {
	return `(function ductTape(modules, entry) {
  var cache = {};
  function interop(value, isDefault, kind) {
    if (isDefault && kind === "CJS") {
      return { default: value };
    }
    return value;
  }
  function require(name, isDefault) {
    var cached = cache[name];
    if (cached) {
      return interop(cached.value, isDefault, cached.kind);
    }
    var entryDef = modules[name];
    var moduleObj = { exports: {} };
    cached = { value: moduleObj.exports, kind: entryDef[1] };
    cache[name] = cached;
    entryDef[0](moduleObj, moduleObj.exports, require);
    // module.exports may have been reassigned wholesale by CJS code;
    // re-read it after the body runs rather than trusting the reference
    // captured above.
    cached.value = moduleObj.exports;
    return interop(cached.value, isDefault, cached.kind);
  }
  require(entry, false);
})(modules, entry);
`
}
