// Package markup holds the text-level building blocks of the exported
// Markdown document: escaping of upstream text, anchor slugs, and rewriting
// of image references embedded in store descriptions.
package markup
