package mcpserver

// HeadingContract describes how headsync derives a filename from a note's
// first heading, so LLM consumers can write notes that land where they expect.
const HeadingContract = `# headsync Heading Contract

headsync renames a Markdown note so that its filename is the slug of its
first heading. Nothing else in the note is changed.

## Which heading counts

1. An optional YAML front-matter block is skipped. It must start on the very
   first line with ` + "`---`" + ` and end at the next ` + "`---`" + ` line. Without a closing
   delimiter there is no front-matter.
2. The first heading after that wins. Two styles are recognised:
   - **Prefix:** a line starting with ` + "`# `" + ` (hash, space). The rest of the line
     is the heading text.
   - **Underline:** a line followed by a line made only of ` + "`=`" + ` characters.
     The first line is the heading text, verbatim.
3. Deeper headings (` + "`## `" + `), ` + "`-`" + ` underlines and HTML headings are ignored.

## How the slug is built

1. Unicode canonical decomposition, then accents are dropped (é becomes e).
2. Surrounding whitespace is trimmed and the text is lowercased.
3. Every character other than a-z, 0-9, space and hyphen is removed.
4. Runs of whitespace become one hyphen; runs of hyphens collapse to one.

A heading with no letters or digits (for example ` + "`# ---`" + `) produces no slug
and the note keeps its name.

## When a rename happens

- The note's current name is slugified the same way and compared with the
  heading slug. If they match (` + "`Hello World.md`" + ` vs ` + "`# Hello, World!`" + `), nothing
  happens.
- The note stays in its folder: ` + "`journal/Untitled.md`" + ` with ` + "`# Daily Log`" + `
  becomes ` + "`journal/daily-log.md`" + `.
- If the target name is already taken, the rename fails and the note is left
  alone.
- Automatic renames only apply to the note being edited, and only when it is
  included: opted in explicitly, matched by the include regex, or covered by
  the vault's excluded-folder rules.

## Example

` + "```" + `markdown
---
tags: [planning]
---
Quarterly Goals: Q3 / 2025
==========================

Body text.
` + "```" + `

Saved as ` + "`plans/draft.md`" + `, this note is renamed to ` + "`plans/quarterly-goals-q3-2025.md`" + `.
`
