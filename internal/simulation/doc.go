// Package simulation — точка расширения для воспроизведения
// записанных циклов воркера и ручного управления временем.
//
// Пока здесь только данные и заглушки; живой планировщик их не использует.
package simulation
