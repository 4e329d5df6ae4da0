package netbash

import (
	"fmt"
	"html/template"
)

const includesFormat = `<link rel="stylesheet" type="text/css" href="%[1]snetbash-includes.css?v=%[2]s">
<script type="text/javascript">
    if (!window.jQuery) document.write(unescape("%%3Cscript src='%[1]snetbash-jquery.js' type='text/javascript'%%3E%%3C/script%%3E"));
</script>
<script type="text/javascript" src="%[1]snetbash-includes.js?v=%[2]s"></script>`

// RenderIncludes returns the stylesheet and script tags a host page needs to
// load the console. version is appended to asset URLs for cache busting.
func RenderIncludes(basePath, version string) template.HTML {
	prefix := template.HTMLEscapeString(RoutePrefix(basePath))
	return template.HTML(fmt.Sprintf(includesFormat, prefix, template.HTMLEscapeString(version)))
}

// TemplateFuncs exposes RenderIncludes to host templates as netbashIncludes
func TemplateFuncs(basePath, version string) template.FuncMap {
	return template.FuncMap{
		"netbashIncludes": func() template.HTML {
			return RenderIncludes(basePath, version)
		},
	}
}
