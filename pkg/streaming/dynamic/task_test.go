package dynamic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vnykmshr/papertrail/internal/testutil"
)

func TestNewTask(t *testing.T) {
	op := func(ctx context.Context) (Result[string], error) {
		return Publish("ok"), nil
	}

	task, err := NewTask("t1", op, 15*time.Second)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, task.ID, "t1")
	testutil.AssertEqual(t, task.Timeout, 15*time.Second)
	if task.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}
}

func TestNewTaskDefaultTimeout(t *testing.T) {
	op := func(ctx context.Context) (Result[string], error) {
		return Spawn[string](), nil
	}

	task, err := NewTask("t1", op, 0)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, task.Timeout, DefaultTimeout)

	task, err = NewTask("t2", op, -time.Second)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, task.Timeout, DefaultTimeout)
}

func TestNewTaskRejectsNilOperation(t *testing.T) {
	_, err := NewTask[string]("bad", nil, time.Second)
	testutil.AssertError(t, err)
	if !errors.Is(err, ErrNilOperation) {
		t.Fatalf("expected ErrNilOperation, got %v", err)
	}
}

func TestPublishAndSpawn(t *testing.T) {
	child, err := NewTask("child", func(ctx context.Context) (Result[int], error) {
		return Publish(2), nil
	}, time.Second)
	testutil.AssertNoError(t, err)

	res := Publish(1, child)
	if res.Publishable == nil {
		t.Fatal("expected publishable value")
	}
	testutil.AssertEqual(t, *res.Publishable, 1)
	testutil.AssertEqual(t, len(res.Next), 1)

	spawned := Spawn(child)
	if spawned.Publishable != nil {
		t.Fatal("expected no publishable value")
	}
	testutil.AssertEqual(t, len(spawned.Next), 1)
}
