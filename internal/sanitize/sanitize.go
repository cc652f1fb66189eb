// sanitize вычищает исполняемую разметку из недоверенных строк.
//
// Используется UGC-политика bluemonday: script-теги с содержимым,
// on*-атрибуты и javascript:-ссылки удаляются, обычный текст и
// безопасная разметка сохраняются.
package sanitize

import (
	"encoding/json"
	"net/url"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer — обёртка над политикой bluemonday.
// Политика неизменяема после создания и безопасна для конкурентного
// использования.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// New создаёт Sanitizer с UGC-политикой.
func New() *Sanitizer {
	return &Sanitizer{policy: bluemonday.UGCPolicy()}
}

// Clean возвращает очищенную копию строки.
func (s *Sanitizer) Clean(in string) string {
	return s.policy.Sanitize(in)
}

// CleanQuery очищает значения query-параметров.
func (s *Sanitizer) CleanQuery(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for key, vals := range q {
		cleaned := make([]string, len(vals))
		for i, v := range vals {
			cleaned[i] = s.Clean(v)
		}
		out[key] = cleaned
	}

	return out
}

// CleanJSONBody очищает строковые значения верхнего уровня JSON-объекта.
// Вложенные объекты/массивы и не-строки не трогаются — вычистка
// сознательно не рекурсивна, как в исходной системе. Если raw не является
// JSON-объектом, возвращается (nil, false) и тело остаётся как есть:
// решать, валиден ли он вообще, — дело валидаторов ниже по конвейеру.
func (s *Sanitizer) CleanJSONBody(raw []byte) ([]byte, bool) {
	if len(raw) == 0 {
		return nil, false
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, false
	}

	changed := false
	for key, val := range body {
		var str string
		if err := json.Unmarshal(val, &str); err != nil {
			continue // не строка — пропускаем.
		}

		cleaned := s.Clean(str)
		if cleaned == str {
			continue
		}

		enc, err := json.Marshal(cleaned)
		if err != nil {
			continue
		}

		body[key] = enc
		changed = true
	}

	if !changed {
		return raw, true
	}

	out, err := json.Marshal(body)
	if err != nil {
		return nil, false
	}

	return out, true
}
