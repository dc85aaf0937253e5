/*
Package session implements diagram persistence orchestration.

It serialises access to saved diagrams across goroutines and, with a
distributed locker, across replicas sharing the same snapshot store.
*/
package session
