package parse

// Metadata is the build-time configuration a grammar-rule file supplies
// alongside the grammar itself (spec.md §6 and §9's "small configuration
// table" allowance for the one genuinely name-dependent classification: which
// keyword is write-like).
type Metadata struct {
	// RequireExplicitDeclaration mirrors the grammar-rule file's
	// REQUIRE_EXPLICIT_DECLARATION metadata flag. When true, only the
	// declaration production populates the symbol table and every other
	// identifier reference (including assignment targets) is checked
	// against it; when false, assignment targets implicitly declare.
	RequireExplicitDeclaration bool

	// KeywordWrite is the terminal token type identifying the "write"-kind
	// keyword (spec.md §9: avoid hard-coded operator lists, but the write
	// keyword is inherently a single fixed name the grammar author must
	// name via metadata rather than structural shape alone, since nothing
	// distinguishes its shape from any other "keyword '(' E ')' ';'"
	// production).
	KeywordWrite string
}
