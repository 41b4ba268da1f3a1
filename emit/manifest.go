package emit

import (
	"encoding/json"
	"fmt"
	"path"

	"github.com/goccy/go-yaml"
	"github.com/samber/lo"

	"github.com/broady/routegen/diagnostic"
	"github.com/broady/routegen/model"
)

// Manifest is the serialized form of a compilation result.
type Manifest struct {
	Groups      []ManifestGroup      `json:"groups" yaml:"groups"`
	Diagnostics []ManifestDiagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

type ManifestGroup struct {
	Type          string               `json:"type" yaml:"type"`
	Prefix        string               `json:"prefix" yaml:"prefix"`
	Name          string               `json:"name,omitempty" yaml:"name,omitempty"`
	Filter        string               `json:"filter,omitempty" yaml:"filter,omitempty"`
	Area          string               `json:"area,omitempty" yaml:"area,omitempty"`
	Dispatch      string               `json:"dispatch" yaml:"dispatch"`
	Authorization *model.Authorization `json:"authorization,omitempty" yaml:"authorization,omitempty"`
	Visibility    *model.Visibility    `json:"visibility,omitempty" yaml:"visibility,omitempty"`
	Endpoints     []ManifestEndpoint   `json:"endpoints" yaml:"endpoints"`
}

type ManifestEndpoint struct {
	Name          string               `json:"name" yaml:"name"`
	Method        string               `json:"method" yaml:"method"`
	Path          string               `json:"path" yaml:"path"`
	Filter        string               `json:"filter,omitempty" yaml:"filter,omitempty"`
	Authorization *model.Authorization `json:"authorization,omitempty" yaml:"authorization,omitempty"`
	Visibility    *model.Visibility    `json:"visibility,omitempty" yaml:"visibility,omitempty"`
	Responses     []model.Response     `json:"responses,omitempty" yaml:"responses,omitempty"`
	Parameters    []ManifestParameter  `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Returns       string               `json:"returns,omitempty" yaml:"returns,omitempty"`
}

type ManifestParameter struct {
	Name   string `json:"name" yaml:"name"`
	Type   string `json:"type" yaml:"type"`
	Source string `json:"source" yaml:"source"`
}

type ManifestDiagnostic struct {
	Kind    string   `json:"kind" yaml:"kind"`
	Group   string   `json:"group" yaml:"group"`
	Method  string   `json:"method" yaml:"method"`
	Path    string   `json:"path" yaml:"path"`
	Members []string `json:"members" yaml:"members"`
}

// NewManifest describes groups and diags.
func NewManifest(groups []*model.EndpointGroup, diags []diagnostic.Diagnostic) Manifest {
	m := Manifest{
		Groups: make([]ManifestGroup, 0, len(groups)),
	}
	for _, g := range groups {
		m.Groups = append(m.Groups, ManifestGroup{
			Type:          g.Identity.String(),
			Prefix:        g.RoutePrefix,
			Name:          g.DisplayName,
			Filter:        g.Filter,
			Area:          g.Area,
			Dispatch:      g.Dispatch.String(),
			Authorization: g.Authorization,
			Visibility:    g.Visibility,
			Endpoints: lo.Map(g.Endpoints, func(ep model.EndpointDescriptor, _ int) ManifestEndpoint {
				return ManifestEndpoint{
					Name:          ep.Name,
					Method:        string(ep.Verb),
					Path:          g.Path(ep),
					Filter:        ep.Filter,
					Authorization: ep.Authorization,
					Visibility:    ep.Visibility,
					Responses:     ep.Responses,
					Parameters: lo.Map(ep.Parameters, func(p model.ParameterBinding, _ int) ManifestParameter {
						return ManifestParameter{Name: p.Name, Type: p.Type, Source: p.Source.String()}
					}),
					Returns: ep.Returns,
				}
			}),
		})
	}
	for _, d := range diags {
		m.Diagnostics = append(m.Diagnostics, ManifestDiagnostic{
			Kind:    string(d.Kind),
			Group:   d.Group.String(),
			Method:  string(d.Verb),
			Path:    d.Path,
			Members: d.Members,
		})
	}
	return m
}

// Encode serializes m in the format implied by name's extension.
func Encode(name string, m Manifest) ([]byte, error) {
	switch path.Ext(name) {
	case ".yaml", ".yml":
		out, err := yaml.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("encode manifest: %w", err)
		}
		return out, nil
	default:
		out, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode manifest: %w", err)
		}
		return append(out, '\n'), nil
	}
}
