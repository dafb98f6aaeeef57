package dynamo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// ifNotExists marks an update value that must only be written when the
// attribute is still absent.
type ifNotExists struct {
	value interface{}
}

// updateExpr is a rendered SET expression with its placeholder maps.
type updateExpr struct {
	Expr   string
	Names  map[string]string
	Values map[string]types.AttributeValue
}

// buildUpdateExpr converts a map of field->value into a DynamoDB SET expression.
// A dot in a field denotes a nested map path ("metadata.email_verified"), so only
// that entry of the map is written. Fields are sorted to keep the output stable.
func buildUpdateExpr(updates map[string]interface{}) (updateExpr, error) {
	if len(updates) == 0 {
		return updateExpr{}, fmt.Errorf("no fields to update")
	}

	fields := make([]string, 0, len(updates))
	for k := range updates {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	ue := updateExpr{
		Names:  make(map[string]string),
		Values: make(map[string]types.AttributeValue),
	}
	placeholders := make(map[string]string)
	placeholder := func(segment string) string {
		if p, ok := placeholders[segment]; ok {
			return p
		}
		p := fmt.Sprintf("#f%d", len(placeholders))
		placeholders[segment] = p
		ue.Names[p] = segment
		return p
	}

	clauses := make([]string, 0, len(fields))
	for i, field := range fields {
		segments := strings.Split(field, ".")
		path := make([]string, len(segments))
		for j, s := range segments {
			path[j] = placeholder(s)
		}
		pathExpr := strings.Join(path, ".")

		value := updates[field]
		inx, guarded := value.(ifNotExists)
		if guarded {
			value = inx.value
		}
		av, err := attributevalue.Marshal(value)
		if err != nil {
			return updateExpr{}, fmt.Errorf("marshal field %s: %w", field, err)
		}
		valueKey := fmt.Sprintf(":v%d", i)
		ue.Values[valueKey] = av

		if guarded {
			clauses = append(clauses, fmt.Sprintf("%s = if_not_exists(%s, %s)", pathExpr, pathExpr, valueKey))
		} else {
			clauses = append(clauses, fmt.Sprintf("%s = %s", pathExpr, valueKey))
		}
	}
	ue.Expr = "SET " + strings.Join(clauses, ", ")
	return ue, nil
}
