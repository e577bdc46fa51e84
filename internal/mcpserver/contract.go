package mcpserver

// ManifestFormatContract describes the canonical manifest.json format
// that LLM consumers should follow when creating or editing manifests.
const ManifestFormatContract = `# Lectern Manifest Format Contract

Every presentation folder may carry a ` + "`" + `manifest.json` + "`" + ` describing its
navigation structure. A folder without one is served in flat discovery
order.

## Structure

` + "```" + `json
{
  "version": 1,
  "tabs": [
    {"id": "workshop", "label": "Workshop", "order": 1}
  ],
  "groups": {
    "getting-started": {"label": "Getting Started", "order": 1, "tabId": "workshop"},
    "advanced":        {"label": "Advanced", "order": 2, "parent": "getting-started"}
  },
  "slides": [
    {"file": "intro-welcome.html", "title": "Welcome", "group": "getting-started"},
    {"file": "notes.html", "title": "Notes"}
  ],
  "meta": {
    "title": "My Presentation",
    "displayMode": "grouped"
  }
}
` + "```" + `

## Rules

1. **Identifiers** (tab ids, group ids) are lowercase kebab-case:
   ` + "`" + `[a-z0-9]+(-[a-z0-9]+)*` + "`" + `.
2. **Slide files** are plain names ending in ` + "`" + `.html` + "`" + ` — no path
   separators. Each file appears at most once in ` + "`" + `slides` + "`" + `.
3. **Group values** are objects. A bare string value is accepted on
   read as a label-only legacy form and rewritten on the next save.
4. **` + "`" + `parent` + "`" + `** links a group to another group; a group inherits its
   tab affiliation from the nearest ancestor with a ` + "`" + `tabId` + "`" + `. Parent
   chains must not form cycles.
5. **` + "`" + `displayMode` + "`" + `** is ` + "`" + `flat` + "`" + ` or ` + "`" + `grouped` + "`" + `. When omitted the
   server picks one from the structure. The retired ` + "`" + `tabbed` + "`" + ` value is
   read as ` + "`" + `grouped` + "`" + `.
6. **Slides referencing an unknown group** render as ungrouped; the
   validator reports a warning, not an error.
7. **Ordering**: ungrouped slides first (in listed order), then groups
   ascending by ` + "`" + `order` + "`" + ` with ties broken by id.
8. **Tab index files** named ` + "`" + `index-{tabId}.html` + "`" + ` are navigation
   pages, not slides; never list them in ` + "`" + `slides` + "`" + `.

## Workflow

- Upload or create the slide HTML file first, then add its entry with
  the ` + "`" + `add_slide` + "`" + ` tool; entries referencing missing files are
  rejected.
- Prefer ` + "`" + `sync_presentation` + "`" + ` over hand-listing files: it reconciles
  the manifest with the folder and keeps existing titles and groups.
`
