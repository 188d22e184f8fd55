package book

import (
	"bytes"
	"text/template"

	"golang.org/x/net/html"
)

var funcs = template.FuncMap{
	"esc": html.EscapeString,
	"inc": func(i int) int { return i + 1 },
}

var navTemplate = template.Must(template.New("nav").Funcs(funcs).Parse(`<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops" lang="{{esc .Language}}" xml:lang="{{esc .Language}}">
<head>
  <title>{{esc .Title}}</title>
  <link rel="stylesheet" type="text/css" href="` + styleFile + `"/>
</head>
<body>
  <nav epub:type="toc" id="id" role="doc-toc">
    <h2>{{esc .Title}}</h2>
    <ol>
{{- range .TOC}}
      <li><a href="{{esc .Href}}">{{esc .Title}}</a></li>
{{- end}}
    </ol>
  </nav>
</body>
</html>
`))

var ncxTemplate = template.Must(template.New("ncx").Funcs(funcs).Parse(`<?xml version="1.0" encoding="utf-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <head>
    <meta name="dtb:uid" content="{{esc .Identifier}}"/>
    <meta name="dtb:depth" content="1"/>
    <meta name="dtb:totalPageCount" content="0"/>
    <meta name="dtb:maxPageNumber" content="0"/>
  </head>
  <docTitle>
    <text>{{esc .Title}}</text>
  </docTitle>
  <navMap>
{{- range $i, $e := .TOC}}
    <navPoint id="navpoint-{{inc $i}}" playOrder="{{inc $i}}">
      <navLabel><text>{{esc $e.Title}}</text></navLabel>
      <content src="{{esc $e.Href}}"/>
    </navPoint>
{{- end}}
  </navMap>
</ncx>
`))

var coverTemplate = template.Must(template.New("cover").Funcs(funcs).Parse(`<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops" lang="{{esc .Language}}" xml:lang="{{esc .Language}}">
<head>
  <title>Cover</title>
  <link rel="stylesheet" type="text/css" href="` + styleFile + `"/>
</head>
<body>
  <img src="{{esc .Cover}}" alt="{{esc .Title}}" style="width: 100%;"/>
</body>
</html>
`))

var chapterTemplate = template.Must(template.New("chapter").Funcs(funcs).Parse(`<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops" lang="{{esc .Language}}" xml:lang="{{esc .Language}}">
<head>
  <title>{{esc .Title}}</title>
  <link rel="stylesheet" type="text/css" href="` + styleFile + `"/>
</head>
<body>
{{.Markup}}
</body>
</html>
`))

type documentData struct {
	Title      string
	Language   string
	Identifier string
	Cover      string
	Markup     string
	TOC        []TOCEntry
}

func render(t *template.Template, data documentData) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
