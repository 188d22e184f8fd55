package book

import (
	"encoding/xml"
	"time"
)

const (
	packageDir  = "EPUB"
	opfFile     = "content.opf"
	navFile     = "nav.xhtml"
	ncxFile     = "toc.ncx"
	coverFile   = "cover.xhtml"
	xhtmlType   = "application/xhtml+xml"
	ncxType     = "application/x-dtbncx+xml"
	cssType     = "text/css"
	epubMime    = "application/epub+zip"
	dcNS        = "http://purl.org/dc/elements/1.1/"
)

// containerXML models META-INF/container.xml.
type containerXML struct {
	XMLName   xml.Name   `xml:"urn:oasis:names:tc:opendocument:xmlns:container container"`
	Version   string     `xml:"version,attr"`
	RootFiles []rootFile `xml:"rootfiles>rootfile"`
}

type rootFile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// opfPackage is the root <package> element of the OPF file.
type opfPackage struct {
	XMLName          xml.Name    `xml:"http://www.idpf.org/2007/opf package"`
	Version          string      `xml:"version,attr"`
	UniqueIdentifier string      `xml:"unique-identifier,attr"`
	Metadata         opfMetadata `xml:"metadata"`
	Manifest         opfManifest `xml:"manifest"`
	Spine            opfSpine    `xml:"spine"`
}

type opfMetadata struct {
	DCNamespace string        `xml:"xmlns:dc,attr"`
	Identifier  opfIdentifier `xml:"dc:identifier"`
	Title       string        `xml:"dc:title"`
	Language    string        `xml:"dc:language"`
	Creator     string        `xml:"dc:creator,omitempty"`
	Metas       []opfMeta     `xml:"meta"`
}

type opfIdentifier struct {
	ID    string `xml:"id,attr"`
	Value string `xml:",chardata"`
}

// opfMeta covers both the ePub 3 property form and the ePub 2 name/content form.
type opfMeta struct {
	Property string `xml:"property,attr,omitempty"`
	Name     string `xml:"name,attr,omitempty"`
	Content  string `xml:"content,attr,omitempty"`
	Value    string `xml:",chardata"`
}

type opfManifest struct {
	Items []opfManifestItem `xml:"item"`
}

type opfManifestItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr,omitempty"`
}

type opfSpine struct {
	Toc      string            `xml:"toc,attr"`
	ItemRefs []opfSpineItemRef `xml:"itemref"`
}

type opfSpineItemRef struct {
	IDRef string `xml:"idref,attr"`
}

func (b *Book) buildContainer() ([]byte, error) {
	c := containerXML{
		Version: "1.0",
		RootFiles: []rootFile{{
			FullPath:  packageDir + "/" + opfFile,
			MediaType: "application/oebps-package+xml",
		}},
	}
	return marshalXML(c)
}

func (b *Book) buildOPF(modified time.Time) ([]byte, error) {
	pkg := opfPackage{
		Version:          "3.0",
		UniqueIdentifier: "id",
		Metadata: opfMetadata{
			DCNamespace: dcNS,
			Identifier:  opfIdentifier{ID: "id", Value: b.identifier},
			Title:       b.title,
			Language:    b.language,
			Creator:     b.author,
			Metas: []opfMeta{
				{Property: "dcterms:modified", Value: modified.Format("2006-01-02T15:04:05Z")},
			},
		},
		Spine: opfSpine{Toc: "ncx"},
	}

	items := []opfManifestItem{
		{ID: navID, Href: navFile, MediaType: xhtmlType, Properties: "nav"},
		{ID: "ncx", Href: ncxFile, MediaType: ncxType},
		{ID: "style_nav", Href: styleFile, MediaType: cssType},
	}
	if b.cover != nil {
		pkg.Metadata.Metas = append(pkg.Metadata.Metas, opfMeta{Name: "cover", Content: b.cover.ID})
		items = append(items,
			opfManifestItem{ID: b.cover.ID, Href: b.cover.FileName, MediaType: b.cover.MediaType, Properties: "cover-image"},
			opfManifestItem{ID: coverPageID, Href: coverFile, MediaType: xhtmlType},
		)
	}
	for _, c := range b.chapters {
		items = append(items, opfManifestItem{ID: c.ID, Href: c.FileName, MediaType: xhtmlType})
		if c.Illustration != nil {
			items = append(items, opfManifestItem{
				ID:        c.Illustration.ID,
				Href:      c.Illustration.FileName,
				MediaType: c.Illustration.MediaType,
			})
		}
	}
	pkg.Manifest.Items = items

	for _, id := range b.spine {
		pkg.Spine.ItemRefs = append(pkg.Spine.ItemRefs, opfSpineItemRef{IDRef: id})
	}

	return marshalXML(pkg)
}

func marshalXML(v any) ([]byte, error) {
	data, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), data...), nil
}
