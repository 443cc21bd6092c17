package themes

import pubthemes "github.com/chartpub/chartpub/themes"

type (
	Theme      = pubthemes.Theme
	FontAsset  = pubthemes.FontAsset
	FontFiles  = pubthemes.FontFiles
	FontMethod = pubthemes.FontMethod
)

const (
	FontMethodFile   = pubthemes.FontMethodFile
	FontMethodURL    = pubthemes.FontMethodURL
	FontMethodImport = pubthemes.FontMethodImport
)
