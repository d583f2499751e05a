package util

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/pkg/errors"
)

type UniqueIDGenerate struct {
	snowflakeNode *snowflake.Node
}

var (
	singletonUniqueIDGenerate     *UniqueIDGenerate
	singletonUniqueIDGenerateErr  error
	singletonUniqueIDGenerateOnce sync.Once
)

// GetUniqueIDGenerate returns the process wide generator bound to node 1.
func GetUniqueIDGenerate() (*UniqueIDGenerate, error) {
	singletonUniqueIDGenerateOnce.Do(func() {
		singletonUniqueIDGenerate, singletonUniqueIDGenerateErr = CreateUniqueIDGenerate(1)
	})
	return singletonUniqueIDGenerate, singletonUniqueIDGenerateErr
}

func CreateUniqueIDGenerate(node int64) (*UniqueIDGenerate, error) {
	snowflakeNode, err := snowflake.NewNode(node)
	if err != nil {
		return nil, errors.Wrap(err, "create snowflake failed")
	}
	return &UniqueIDGenerate{
		snowflakeNode: snowflakeNode,
	}, nil
}

func (u UniqueIDGenerate) Generate() *UniqueID {
	return &UniqueID{
		snowflakeID: u.snowflakeNode.Generate(),
	}
}

type UniqueID struct {
	snowflakeID snowflake.ID
}

func (u UniqueID) GetInt64() int64 {
	return u.snowflakeID.Int64()
}

func GetSnowflakeIDInt64() int64 {
	uniqueIDGenerate, err := GetUniqueIDGenerate()
	if err != nil {
		panic(err)
	}
	return uniqueIDGenerate.Generate().GetInt64()
}
