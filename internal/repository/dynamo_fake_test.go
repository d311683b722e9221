package repository

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo understands exactly the request shapes the repositories send.
// Query and Scan return at most fakePageSize items per call so that the
// pagination loops get exercised.
type fakeDynamo struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
}

const fakePageSize = 3

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

func strAttr(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func itemKey(item map[string]types.AttributeValue) string {
	return strAttr(item, "PK") + "|" + strAttr(item, "SK")
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := itemKey(in.Item)
	if in.ConditionExpression != nil && *in.ConditionExpression == "attribute_not_exists(PK)" {
		if _, exists := f.items[key]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	f.items[key] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return &dynamodb.GetItemOutput{Item: f.items[itemKey(in.Key)]}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.items, itemKey(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := itemKey(in.Key)
	item, ok := f.items[key]
	if !ok {
		item = map[string]types.AttributeValue{"PK": in.Key["PK"], "SK": in.Key["SK"]}
	}

	current := int64(0)
	if v, ok := item["Value"].(*types.AttributeValueMemberN); ok {
		current, _ = strconv.ParseInt(v.Value, 10, 64)
	}
	delta, _ := strconv.ParseInt(in.ExpressionAttributeValues[":one"].(*types.AttributeValueMemberN).Value, 10, 64)
	next := &types.AttributeValueMemberN{Value: strconv.FormatInt(current+delta, 10)}
	item["Value"] = next
	f.items[key] = item

	return &dynamodb.UpdateItemOutput{Attributes: map[string]types.AttributeValue{"Value": next}}, nil
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pk := strAttr(in.ExpressionAttributeValues, ":pk")
	var matched []map[string]types.AttributeValue
	for _, item := range f.items {
		if strAttr(item, "PK") == pk {
			matched = append(matched, item)
		}
	}

	forward := in.ScanIndexForward == nil || *in.ScanIndexForward
	sort.Slice(matched, func(i, j int) bool {
		if forward {
			return strAttr(matched[i], "SK") < strAttr(matched[j], "SK")
		}
		return strAttr(matched[i], "SK") > strAttr(matched[j], "SK")
	})

	if in.ExclusiveStartKey != nil {
		after := strAttr(in.ExclusiveStartKey, "SK")
		for i, item := range matched {
			if strAttr(item, "SK") == after {
				matched = matched[i+1:]
				break
			}
		}
	}

	pageSize := fakePageSize
	if in.Limit != nil && int(*in.Limit) < pageSize {
		pageSize = int(*in.Limit)
	}

	out := &dynamodb.QueryOutput{}
	page := matched
	if len(matched) > pageSize {
		page = matched[:pageSize]
		last := page[len(page)-1]
		out.LastEvaluatedKey = map[string]types.AttributeValue{"PK": last["PK"], "SK": last["SK"]}
	}

	out.Count = int32(len(page))
	if in.Select != types.SelectCount {
		out.Items = page
	}
	return out, nil
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := strAttr(in.ExpressionAttributeValues, ":pk_prefix")
	count := 0
	for _, item := range f.items {
		if strings.HasPrefix(strAttr(item, "PK"), prefix) {
			count++
		}
	}
	return &dynamodb.ScanOutput{Count: int32(count)}, nil
}

func (f *fakeDynamo) DescribeTable(context.Context, *dynamodb.DescribeTableInput, ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	return &dynamodb.DescribeTableOutput{}, nil
}
