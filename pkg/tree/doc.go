// Package tree holds the generic, loosely typed form of a manifest.
//
// [Parse] turns manifest text into an ordered [Table] using
// github.com/BurntSushi/toml, or returns a [*SyntaxError] listing positioned
// diagnostics. The descriptor decoder reads the table and records what it
// consumed in a [Paths] set; [Unused] then walks the table again and reports
// every leaf the decoder never touched.
//
//	root, err := tree.Parse(text, "Cargo.toml")
//	if err != nil {
//	    return err
//	}
//	for _, key := range tree.Unused(root, consumed) {
//	    fmt.Println("unused manifest key:", key)
//	}
package tree
