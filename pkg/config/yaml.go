package config

import (
	"io/ioutil"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// yamlDecoder lets aconfig read build-web.yml files
type yamlDecoder struct{}

func (*yamlDecoder) Format() string {
	return "yaml"
}

func (*yamlDecoder) DecodeFile(filename string) (map[string]interface{}, error) {
	content, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to open file %s", filename)
	}

	var doc map[string]interface{}
	err = yaml.Unmarshal(content, &doc)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to parse file %s", filename)
	}

	if doc == nil {
		doc = map[string]interface{}{}
	}
	return doc, nil
}
