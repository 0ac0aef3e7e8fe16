package wordpress

import (
	"fmt"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	mdplugin "github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	"gopkg.in/yaml.v3"
)

type markdownHeader struct {
	Title  string   `yaml:"title"`
	ID     int      `yaml:"id"`
	Status Status   `yaml:"status"`
	Date   string   `yaml:"date,omitempty"`
	Author string   `yaml:"author,omitempty"`
	Link   string   `yaml:"link,omitempty"`
	Terms  []string `yaml:"terms,omitempty"`
}

// ToMarkdown renders an item for reading in a terminal: a YAML header followed by the body as
// GitHub-flavoured Markdown.  Relative links are made absolute against this site.
func (api *API) ToMarkdown(item ContentItem) (string, error) {
	// md.NewConverter only accepts a hostname as its base, so scheme and site path are patched in
	// here.
	opt := &md.Options{
		GetAbsoluteURL: func(selec *goquery.Selection, rawURL string, domain string) string {
			u, err := url.Parse(rawURL)
			if err != nil {
				return rawURL
			}
			if u.Scheme == "data" || u.IsAbs() {
				return rawURL
			}
			abs, err := api.ResolveAssetURL(rawURL)
			if err != nil {
				return rawURL
			}
			return abs.String()
		},
	}

	converter := md.NewConverter(api.BaseURI.Host, true, opt)
	converter.Use(mdplugin.GitHubFlavored())

	markdown, err := converter.ConvertString(item.Content.Rendered)
	if err != nil {
		return "", fmt.Errorf("wordpress: failed to convert item %d to Markdown: %w", item.ID, err)
	}

	header := markdownHeader{
		Title:  item.Title.Text(),
		ID:     item.ID,
		Status: item.Status,
		Date:   item.Date,
		Author: item.Embedded.AuthorName(),
		Link:   item.Link,
	}
	for _, t := range item.Embedded.AllTerms() {
		header.Terms = append(header.Terms, t.Slug)
	}

	yamlHeader, err := yaml.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("wordpress: couldn't marshal header YAML: %w", err)
	}

	return fmt.Sprintf("---\n%s\n---\n%s\n", strings.TrimSpace(string(yamlHeader)), markdown), nil
}
